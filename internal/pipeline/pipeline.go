// Package pipeline は、設定から HTTPクライアント → リスター/抽出器 → 書き出し先 → Orchestrator
// までの依存関係を組み立てます。
package pipeline

import (
	"fmt"
	"io"

	"github.com/shouni/go-clinic-scraper/internal/logger"
	"github.com/shouni/go-clinic-scraper/pkg/config"
	"github.com/shouni/go-clinic-scraper/pkg/extract"
	"github.com/shouni/go-clinic-scraper/pkg/httpclient"
	"github.com/shouni/go-clinic-scraper/pkg/output"
	"github.com/shouni/go-clinic-scraper/pkg/region"
	"github.com/shouni/go-clinic-scraper/pkg/scraper"
)

// Settings はコマンドラインから上書きされる実行時の設定です。
type Settings struct {
	OutputPath  string        // 空の場合は config の OutputPath
	Format      output.Format // 空の場合は拡張子から判定
	Concurrency int
	Out         io.Writer
	Logger      logger.Logger
	Doer        httpclient.Doer // テスト用。nil の場合は net/http
}

// NewFetcher は設定に従ってリトライ付きの HTTPクライアントを生成します。
func NewFetcher(cfg *config.Config, s Settings) *httpclient.Client {
	opts := []httpclient.Option{
		httpclient.WithMaxAttempts(uint64(cfg.MaxAttempts)),
		httpclient.WithRetryInterval(cfg.RetryInterval),
		httpclient.WithUserAgent(cfg.UserAgent),
		httpclient.WithLogger(s.Logger),
	}
	if s.Doer != nil {
		opts = append(opts, httpclient.WithHTTPClient(s.Doer))
	}
	return httpclient.New(cfg.Timeout, opts...)
}

// NewOrchestrator は cfg と s から Orchestrator を組み立てます。
func NewOrchestrator(cfg *config.Config, s Settings) (*scraper.Orchestrator, error) {
	if s.Logger == nil {
		s.Logger = logger.NewNop()
	}

	// 1. Fetcher
	fetcher := NewFetcher(cfg, s)

	// 2. Lister / Extractor (DI)
	lister, err := region.NewLister(fetcher, cfg.BaseURL(), cfg.ArchivePrefix, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("Listerの初期化エラー: %w", err)
	}
	extractor, err := extract.NewExtractor(fetcher, cfg.Overrides())
	if err != nil {
		return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}

	// 3. 書き出し先
	path := s.OutputPath
	if path == "" {
		path = cfg.OutputPath
	}
	sink, err := output.NewFileSink(path, s.Format)
	if err != nil {
		return nil, fmt.Errorf("出力先の初期化エラー: %w", err)
	}

	// 4. Orchestrator
	return scraper.New(lister, extractor, sink, scraper.Options{
		Regions:        cfg.Regions(),
		RegionDelay:    cfg.RegionDelay,
		ClinicDelay:    cfg.ClinicDelay,
		MaxConcurrency: s.Concurrency,
		Out:            s.Out,
		Logger:         s.Logger,
	})
}
