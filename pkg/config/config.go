// Package config は、スクレイピング対象 (リージョン一覧、住所の上書き表など) の
// 静的な設定を提供します。設定は読み込み後に変更されません。
package config

import (
	"fmt"
	"maps"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultArchivePrefix = "https://web.archive.org/web/20250708180027/"
	DefaultSiteURL       = "https://www.myfootdr.com.au"
	DefaultOutputPath    = "clinics.csv"

	DefaultTimeout       = 15 * time.Second
	DefaultMaxAttempts   = 3
	DefaultRetryInterval = 1 * time.Second
	DefaultRegionDelay   = 500 * time.Millisecond
	DefaultClinicDelay   = 300 * time.Millisecond
)

// defaultRegions はクロール対象のリージョンのパスセグメントです。
var defaultRegions = []string{
	"sunshine-coast",
	"brisbane",
	"gold-coast",
	"north-queensland",
	"central-queensland",
	"new-south-wales",
	"victoria",
	"south-australia",
	"western-australia",
	"northern-territory",
	"tasmania",
}

// defaultAddressOverrides は、自動抽出が失敗する/ノイズが多いクリニックの既知の住所です。
var defaultAddressOverrides = map[string]string{
	"Allsports Podiatry Noosa": "Unit 4, 17 Sunshine Beach Rd\nNoosa QLD 4567",
}

// Overrides はクリニック名 (完全一致) から正しい住所への読み取り専用の対応表です。
type Overrides struct {
	m map[string]string
}

// NewOverrides は与えられたマップのコピーから Overrides を生成します。
func NewOverrides(m map[string]string) Overrides {
	return Overrides{m: maps.Clone(m)}
}

// Lookup は name に対応する住所を返します。
func (o Overrides) Lookup(name string) (string, bool) {
	addr, ok := o.m[name]
	return addr, ok
}

// Len は登録件数を返します。
func (o Overrides) Len() int { return len(o.m) }

// Config はスクレイパー全体の設定です。
type Config struct {
	ArchivePrefix string `yaml:"archive_prefix"`
	SiteURL       string `yaml:"site_url"`
	OutputPath    string `yaml:"output_path"`
	UserAgent     string `yaml:"user_agent"`

	Timeout       time.Duration `yaml:"timeout"`
	MaxAttempts   int           `yaml:"max_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	RegionDelay   time.Duration `yaml:"region_delay"`
	ClinicDelay   time.Duration `yaml:"clinic_delay"`

	RegionList       []string          `yaml:"regions"`
	AddressOverrides map[string]string `yaml:"address_overrides"`
}

// Default は組み込みのデフォルト設定を返します。
func Default() *Config {
	return &Config{
		ArchivePrefix:    DefaultArchivePrefix,
		SiteURL:          DefaultSiteURL,
		OutputPath:       DefaultOutputPath,
		Timeout:          DefaultTimeout,
		MaxAttempts:      DefaultMaxAttempts,
		RetryInterval:    DefaultRetryInterval,
		RegionDelay:      DefaultRegionDelay,
		ClinicDelay:      DefaultClinicDelay,
		RegionList:       slices.Clone(defaultRegions),
		AddressOverrides: maps.Clone(defaultAddressOverrides),
	}
}

// Load はYAMLファイルを読み込み、デフォルト設定の上に適用します。
// path が空の場合はデフォルト設定を返します。
// address_overrides は組み込みの上書き表にマージされ、regions は置き換えられます。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルの解析に失敗しました: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を検証します。
func (c *Config) Validate() error {
	u, err := url.Parse(c.SiteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site_url が不正です: %q", c.SiteURL)
	}
	if c.ArchivePrefix != "" && !strings.HasSuffix(c.ArchivePrefix, "/") {
		return fmt.Errorf("archive_prefix は '/' で終わる必要があります: %q", c.ArchivePrefix)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts は1以上である必要があります: %d", c.MaxAttempts)
	}
	if c.Timeout < 0 || c.RetryInterval < 0 || c.RegionDelay < 0 || c.ClinicDelay < 0 {
		return fmt.Errorf("時間の設定値に負の値は指定できません")
	}
	for _, r := range c.RegionList {
		if strings.TrimSpace(r) == "" || strings.Contains(r, "/") {
			return fmt.Errorf("リージョン名が不正です: %q", r)
		}
	}
	return nil
}

// BaseURL はアーカイブスナップショットのプレフィックスを付与したサイトURLです。
func (c *Config) BaseURL() string {
	return c.ArchivePrefix + strings.TrimSuffix(c.SiteURL, "/")
}

// Regions はリージョン一覧のコピーを返します。
func (c *Config) Regions() []string {
	return slices.Clone(c.RegionList)
}

// Overrides は住所の上書き表を返します。
func (c *Config) Overrides() Overrides {
	return NewOverrides(c.AddressOverrides)
}
