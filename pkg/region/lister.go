package region

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-clinic-scraper/internal/logger"
	"github.com/shouni/go-clinic-scraper/pkg/htmltext"
	"github.com/shouni/go-clinic-scraper/pkg/types"
)

// Fetcher は、ページの生バイト配列を取得する機能のインターフェースです。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

const (
	clinicPathMarker = "/our-clinics/"
	regionPathMarker = "/regions/"

	// nonClinicLabel はクリニック一覧へ戻るナビゲーションリンクの表示名です。
	nonClinicLabel = "Our Clinics"
	minNameLength  = 2
)

// ErrPageUnavailable はリージョンページを取得できなかったことを示します。
// この場合 List は空の結果と共にこのエラーを返し、実行全体は継続できます。
var ErrPageUnavailable = errors.New("リージョンページを取得できませんでした")

var clinicSlugPattern = regexp.MustCompile(`/our-clinics/([^/]+)/`)

// nameSource はアンカー要素から表示名の候補を取り出す戦略です。
type nameSource func(a *goquery.Selection) string

// nameSources は優先順の表示名候補です。最初に minNameLength 以上の名前を返したものを採用します。
var nameSources = []nameSource{
	visibleText,
	labelAttribute,
	nestedHeading,
}

func visibleText(a *goquery.Selection) string {
	return htmltext.Stripped(a)
}

func labelAttribute(a *goquery.Selection) string {
	for _, attr := range []string{"title", "aria-label"} {
		if v := textUtils.NormalizeText(a.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

func nestedHeading(a *goquery.Selection) string {
	h := a.Find("h2, h3, h4").First()
	if h.Length() == 0 {
		return ""
	}
	return htmltext.Stripped(h)
}

// slugStrategy はhrefからクリニックのスラッグを取り出す戦略です。
type slugStrategy func(href string) string

var slugStrategies = []slugStrategy{
	slugFromPattern,
	slugFromSplit,
}

func slugFromPattern(href string) string {
	if m := clinicSlugPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

// slugFromSplit は末尾の "/our-clinics/" 以降の最初のパスセグメントを返します。
func slugFromSplit(href string) string {
	idx := strings.LastIndex(href, clinicPathMarker)
	if idx < 0 {
		return ""
	}
	tail := href[idx+len(clinicPathMarker):]
	seg, _, _ := strings.Cut(tail, "/")
	return strings.TrimSpace(seg)
}

// Lister はリージョンのディレクトリページからクリニックへのリンクを収集します。
type Lister struct {
	fetcher       Fetcher
	baseURL       string
	archivePrefix string
	logger        logger.Logger
}

// NewLister は新しい Lister を生成します。
// baseURL はアーカイブのプレフィックスを含むサイトURL、archivePrefix はクリニックURLから除去するプレフィックスです。
func NewLister(fetcher Fetcher, baseURL, archivePrefix string, log logger.Logger) (*Lister, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("region.NewLister: Fetcher cannot be nil")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Lister{
		fetcher:       fetcher,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		archivePrefix: archivePrefix,
		logger:        log,
	}, nil
}

// RegionURL はリージョンのディレクトリページのURLを返します。
func (l *Lister) RegionURL(region string) string {
	return fmt.Sprintf("%s/our-clinics/regions/%s/", l.baseURL, region)
}

// ClinicURL はスラッグから正規化されたクリニックページのURLを組み立てます。
// アーカイブのプレフィックスは取り除かれるため、詳細ページは元サイトから取得されます。
func (l *Lister) ClinicURL(slug string) string {
	u := fmt.Sprintf("%s/our-clinics/%s/", l.baseURL, slug)
	if l.archivePrefix == "" {
		return u
	}
	return strings.Replace(u, l.archivePrefix, "", 1)
}

// List はリージョンページを取得し、クリニックへのリンクを出現順・URL重複なしで返します。
// ページの取得に失敗した場合はログを残し、空の結果と ErrPageUnavailable を返します。
func (l *Lister) List(ctx context.Context, region string) ([]types.ClinicLink, error) {
	regionURL := l.RegionURL(region)

	body, err := l.fetcher.FetchBytes(ctx, regionURL)
	if err != nil {
		l.logger.Warn("リージョンページの取得に失敗しました",
			logger.String("region", region), logger.Error(err))
		return []types.ClinicLink{}, fmt.Errorf("%w (region: %s): %w", ErrPageUnavailable, region, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リージョンページのHTML解析に失敗しました (region: %s): %w", region, err)
	}

	return l.ExtractLinks(doc), nil
}

// ExtractLinks は解析済みドキュメントからクリニックへのリンクを抽出します。
func (l *Lister) ExtractLinks(doc *goquery.Document) []types.ClinicLink {
	links := []types.ClinicLink{}
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if href == "" {
			return
		}

		name := resolveName(a)
		if name == "" || strings.TrimSpace(name) == nonClinicLabel {
			return
		}

		if !strings.Contains(href, clinicPathMarker) || strings.Contains(href, regionPathMarker) {
			return
		}

		slug := resolveSlug(href)
		if slug == "" {
			return
		}

		clinicURL := l.ClinicURL(slug)
		if _, dup := seen[clinicURL]; dup {
			return
		}
		seen[clinicURL] = struct{}{}
		links = append(links, types.ClinicLink{Name: name, URL: clinicURL})
	})

	return links
}

func resolveName(a *goquery.Selection) string {
	for _, src := range nameSources {
		if name := src(a); utf8.RuneCountInString(name) >= minNameLength {
			return name
		}
	}
	return ""
}

func resolveSlug(href string) string {
	for _, strategy := range slugStrategies {
		if slug := strategy(href); slug != "" {
			return slug
		}
	}
	return ""
}
