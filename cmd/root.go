package cmd

import (
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-clinic-scraper/internal/logger"
	"github.com/shouni/go-clinic-scraper/pkg/config"
)

// --- グローバル定数 ---

const (
	appName = "clinic-scraper"
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	ConfigPath string        // --config 設定ファイル (YAML)
	Timeout    time.Duration // --timeout HTTPリクエストのタイムアウト
	MaxRetries int           // --max-retries 初回を含む最大試行回数
}

var Flags AppFlags

var (
	appConfig *config.Config
	appLogger logger.Logger = logger.NewNop()
)

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(
		&Flags.ConfigPath,
		"config",
		"",
		"設定ファイル (YAML) のパス。省略時は組み込みの設定を使用",
	)
	rootCmd.PersistentFlags().DurationVar(
		&Flags.Timeout,
		"timeout",
		config.DefaultTimeout,
		"HTTPリクエストのタイムアウト時間",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		config.DefaultMaxAttempts,
		"HTTPリクエストの最大試行回数 (初回を含む)",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	// 1. ロガー (進捗表示は stdout、診断ログは stderr)
	level := "info"
	if clibase.Flags.Verbose {
		level = "debug"
	}
	l, err := logger.New(logger.Config{Level: level})
	if err != nil {
		return err
	}
	appLogger = l

	// 2. 設定ファイル
	cfg, err := config.Load(Flags.ConfigPath)
	if err != nil {
		return err
	}

	// 3. フラグが明示された場合のみ設定ファイルの値を上書きする
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = Flags.Timeout
	}
	if flags.Changed("max-retries") {
		cfg.MaxAttempts = Flags.MaxRetries
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg

	appLogger.Debug("設定を読み込みました",
		logger.String("config", Flags.ConfigPath),
		logger.String("base_url", cfg.BaseURL()),
		logger.Duration("timeout", cfg.Timeout),
		logger.Int("max_attempts", cfg.MaxAttempts),
		logger.Int("regions", len(cfg.RegionList)),
	)
	return nil
}

// syncLogger はバッファされたログを書き出します。各コマンドの RunE で defer します。
func syncLogger() {
	_ = appLogger.Sync()
}

// --- エントリポイント ---

// Execute は、clibase.Execute を使用してルートコマンドを実行します。
// clibase.Execute はエラー時に自ら os.Exit(1) するため、ロガーのフラッシュは各コマンドの RunE 内で行います。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		scrapeCmd,
		regionsCmd,
		showCmd,
	)
}
