package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"

	"github.com/shouni/go-clinic-scraper/pkg/htmltext"
	"github.com/shouni/go-clinic-scraper/pkg/types"
)

// ErrNilFetcher は Fetcher が指定されなかったことを示します。
var ErrNilFetcher = errors.New("extract.NewExtractor: Fetcher cannot be nil")

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	servicesHeadingText = "Services Available"
	servicesSeparator   = ", "
)

// Extractor は、Fetcher を使ってクリニック詳細ページからの抽出プロセスを管理します。
type Extractor struct {
	fetcher   Fetcher
	overrides AddressOverrides
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
// overrides が nil の場合、住所の上書きは行いません。
func NewExtractor(fetcher Fetcher, overrides AddressOverrides) (*Extractor, error) {
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	return &Extractor{
		fetcher:   fetcher,
		overrides: overrides,
	}, nil
}

// ----------------------------------------------------------------------
// メイン関数 (メソッド化)
// ----------------------------------------------------------------------

// Extract はクリニックページを取得し、連絡先とサービスを抽出します。
// 取得またはHTML解析に失敗した場合のみエラーを返し、項目が見つからないことはエラーになりません。
func (e *Extractor) Extract(ctx context.Context, link types.ClinicLink) (*types.ClinicRecord, error) {
	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := e.fetcher.FetchBytes(ctx, link.URL)
	if err != nil {
		return nil, fmt.Errorf("クリニックページの取得に失敗しました: %w", err)
	}

	// 2. Extractor内でgoquery.Documentに変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("クリニックページのHTML解析に失敗しました: %w", err)
	}

	record := e.ExtractFromDocument(doc, link.Name)
	return &record, nil
}

// ExtractFromDocument は解析済みのドキュメントから ClinicRecord を組み立てます。
func (e *Extractor) ExtractFromDocument(doc *goquery.Document, name string) types.ClinicRecord {
	text := htmltext.Flatten(doc.Selection)

	record := types.ClinicRecord{
		Name:     name,
		Phone:    FirstMatch(text, PhoneMatchers),
		Email:    FirstMatch(text, EmailMatchers),
		Address:  FirstMatch(text, AddressMatchers),
		Services: strings.Join(extractServices(doc), servicesSeparator),
	}

	// 自動抽出の結果より手動の上書きを優先する
	if e.overrides != nil {
		if addr, ok := e.overrides.Lookup(record.Name); ok {
			record.Address = addr
		}
	}
	return record
}

// extractServices は "Services Available" 見出しに続くサービスカード (article) の見出しを集めます。
// 次の h2 見出しに到達した時点で終了します。
func extractServices(doc *goquery.Document) []string {
	heading := findServicesHeading(doc)
	if heading == nil {
		return nil
	}

	var services []string
	for s := heading.Next(); s.Length() > 0; s = s.Next() {
		if htmltext.Is(s, atom.H2) {
			break
		}
		if !htmltext.Is(s, atom.Article) {
			continue
		}

		h3 := s.Find("h3").First()
		if h3.Length() == 0 {
			continue
		}
		name := cleanServiceName(htmltext.Stripped(h3))
		if utf8.RuneCountInString(name) >= minServiceLength {
			services = append(services, name)
		}
	}
	return services
}

func findServicesHeading(doc *goquery.Document) *goquery.Selection {
	var heading *goquery.Selection
	doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.Contains(htmltext.Flatten(h), servicesHeadingText) {
			heading = h
			return false
		}
		return true
	})
	return heading
}
