package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/shouni/go-clinic-scraper/internal/logger"
	"github.com/shouni/go-clinic-scraper/pkg/region"
	"github.com/shouni/go-clinic-scraper/pkg/types"
)

const (
	// DefaultMaxConcurrency は、詳細ページ取得のデフォルトの同時実行数です (逐次処理)。
	DefaultMaxConcurrency = 1

	maxDisplayNameLength = 45
	displayNameWidth     = 47
	separatorWidth       = 60

	markSuccess = "✓"
	markFailure = "✗"

	// NoDataMessage は1件もレコードが得られなかった場合の通知です。
	NoDataMessage = "No clinic data found!"
)

// RegionLister はリージョンからクリニックへのリンク一覧を取得します。
type RegionLister interface {
	List(ctx context.Context, region string) ([]types.ClinicLink, error)
}

// DetailExtractor はクリニック詳細ページからレコードを抽出します。
type DetailExtractor interface {
	Extract(ctx context.Context, link types.ClinicLink) (*types.ClinicRecord, error)
}

// Sink は収集したレコードの書き出し先です。
type Sink interface {
	Save(records []types.ClinicRecord) error
	Location() string
}

// Phase は Orchestrator の処理段階です。
type Phase int

const (
	PhaseListing Phase = iota
	PhaseDetailing
	PhaseWriting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseListing:
		return "listing"
	case PhaseDetailing:
		return "detailing"
	case PhaseWriting:
		return "writing"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Options は Orchestrator の設定です。
type Options struct {
	Regions        []string
	RegionDelay    time.Duration
	ClinicDelay    time.Duration
	MaxConcurrency int
	Out            io.Writer // 進捗表示の出力先 (nil の場合は io.Discard)
	Logger         logger.Logger
}

// Summary は1回の実行結果の集計です。
type Summary struct {
	Discovered int
	Successful int
	Failed     int
	Skipped    int // キャンセルにより取得しなかった件数
	Records    []types.ClinicRecord
	Written    bool
	OutputPath string
}

// Orchestrator は リージョン列挙 → 詳細抽出 → 書き出し の流れを管理します。
type Orchestrator struct {
	lister    RegionLister
	extractor DetailExtractor
	sink      Sink

	regions        []string
	regionPacer    *Pacer
	clinicPacer    *Pacer
	maxConcurrency int
	out            io.Writer
	logger         logger.Logger
}

// New は Orchestrator を初期化します。
func New(lister RegionLister, extractor DetailExtractor, sink Sink, opts Options) (*Orchestrator, error) {
	if lister == nil || extractor == nil || sink == nil {
		return nil, fmt.Errorf("scraper.New: lister, extractor, sink はすべて必須です")
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	// 逐次処理では完了後に一定時間待ち、並列処理ではワーカー間で開始間隔を共有する
	clinicPacer := NewPacer(opts.ClinicDelay)
	if opts.MaxConcurrency > 1 {
		clinicPacer = NewSharedPacer(opts.ClinicDelay)
	}

	return &Orchestrator{
		lister:         lister,
		extractor:      extractor,
		sink:           sink,
		regions:        append([]string(nil), opts.Regions...),
		regionPacer:    NewPacer(opts.RegionDelay),
		clinicPacer:    clinicPacer,
		maxConcurrency: opts.MaxConcurrency,
		out:            opts.Out,
		logger:         opts.Logger,
	}, nil
}

func (o *Orchestrator) enter(p Phase) {
	o.logger.Debug("フェーズ遷移", logger.String("phase", p.String()))
}

// Run は全リージョンを走査してレコードを収集し、書き出し先に保存します。
// リージョン単位・クリニック単位の失敗は集計されるだけで、実行は継続されます。
// 書き出しの失敗のみエラーとして返します。
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	fmt.Fprintf(o.out, "Starting clinic data scraper...\n\n")

	// 1. Listing
	o.enter(PhaseListing)
	links := o.listAll(ctx)

	fmt.Fprintf(o.out, "\n\nTotal clinics discovered: %d\n", len(links))
	o.logger.Debug("発見したクリニック", logger.Int("count", len(links)), logger.String("links", fmt.Sprint(links)))
	fmt.Fprintf(o.out, "Now fetching individual clinic details...\n\n")

	// 2. Detailing
	o.enter(PhaseDetailing)
	summary := o.detailAll(ctx, links)

	// 3. Writing
	o.enter(PhaseWriting)
	if len(summary.Records) == 0 {
		fmt.Fprintln(o.out, NoDataMessage)
		o.enter(PhaseDone)
		return summary, nil
	}

	if err := o.sink.Save(summary.Records); err != nil {
		return summary, fmt.Errorf("結果の保存に失敗しました: %w", err)
	}
	summary.Written = true
	summary.OutputPath = o.sink.Location()
	o.printSummary(summary)

	o.enter(PhaseDone)
	return summary, nil
}

// ListAll は Listing 段階のみを実行し、全リージョンのリンクを返します。
func (o *Orchestrator) ListAll(ctx context.Context) []types.ClinicLink {
	return o.listAll(ctx)
}

func (o *Orchestrator) listAll(ctx context.Context) []types.ClinicLink {
	var all []types.ClinicLink

	for _, name := range o.regions {
		if err := o.regionPacer.Wait(ctx); err != nil {
			o.logger.Warn("リージョンの走査を中断しました", logger.Error(err))
			break
		}

		fmt.Fprintf(o.out, "Fetching region: %s\n", name)
		links, err := o.lister.List(ctx, name)
		o.regionPacer.Done()
		if errors.Is(err, region.ErrPageUnavailable) {
			fmt.Fprintf(o.out, "  Failed to fetch region page\n")
			continue
		}
		if err != nil {
			fmt.Fprintf(o.out, "  Error in region %s: %s\n", name, logger.Truncate(err.Error(), logger.MaxErrorLength))
			o.logger.Error("リージョンの処理に失敗しました", logger.String("region", name), logger.Error(err))
			continue
		}
		fmt.Fprintf(o.out, "  Found %d clinics\n", len(links))
		all = append(all, links...)
	}
	return all
}

type detailResult struct {
	attempted bool
	record    *types.ClinicRecord
	err       error
}

// detailAll は各クリニックの詳細を抽出します。
// 結果は完了順ではなく発見順 (インデックス) で保持されます。
func (o *Orchestrator) detailAll(ctx context.Context, links []types.ClinicLink) *Summary {
	results := make([]detailResult, len(links))

	var (
		wg sync.WaitGroup
		mu sync.Mutex // 進捗表示の排他
	)
	// バッファ付きチャネルをセマフォとして使用し、同時実行数を制限する
	semaphore := make(chan struct{}, o.maxConcurrency)

	for i, link := range links {
		if ctx.Err() != nil {
			break
		}
		semaphore <- struct{}{}
		wg.Add(1)

		go func(i int, link types.ClinicLink) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := o.clinicPacer.Wait(ctx); err != nil {
				return
			}

			record, err := o.extractor.Extract(ctx, link)
			o.clinicPacer.Done()
			results[i] = detailResult{attempted: true, record: record, err: err}

			mark := markSuccess
			if err != nil || record == nil {
				mark = markFailure
				o.logger.Warn("クリニックの抽出に失敗しました",
					logger.String("clinic", link.Name), logger.Error(err))
			}

			mu.Lock()
			fmt.Fprintf(o.out, "[%3d/%d] %-*s %s\n", i+1, len(links), displayNameWidth, displayName(link.Name), mark)
			mu.Unlock()
		}(i, link)
	}
	wg.Wait()

	summary := &Summary{Discovered: len(links)}
	for _, res := range results {
		switch {
		case !res.attempted:
			summary.Skipped++
		case res.err != nil || res.record == nil:
			summary.Failed++
		default:
			summary.Successful++
			summary.Records = append(summary.Records, *res.record)
		}
	}
	return summary
}

func (o *Orchestrator) printSummary(s *Summary) {
	line := strings.Repeat("=", separatorWidth)
	fmt.Fprintf(o.out, "\n\n%s\n", line)
	fmt.Fprintf(o.out, "Successfully scraped data from %d clinics\n", s.Successful)
	fmt.Fprintf(o.out, "Failed or incomplete: %d clinics\n", s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(o.out, "Skipped (interrupted): %d clinics\n", s.Skipped)
	}
	fmt.Fprintf(o.out, "Data saved to: %s\n", s.OutputPath)
	fmt.Fprintf(o.out, "%s\n", line)
}

// displayName は進捗表示用に名前を最大 maxDisplayNameLength 文字に切り詰めます。
func displayName(name string) string {
	return logger.Truncate(name, maxDisplayNameLength)
}
