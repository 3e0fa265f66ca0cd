package scraper

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer は連続するリクエストの間隔を制御します。
//
// NewPacer で生成したものは、直前のリクエストの完了 (Done) から interval が経過するまで
// 次のリクエストを待たせます。NewSharedPacer で生成したものは複数のワーカーで共有され、
// リクエストの開始を interval ごとに1件に制限します。
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter // 共有モードのみ

	mu       sync.Mutex
	lastDone time.Time
}

// NewPacer は逐次処理用の Pacer を生成します。interval が0以下の場合は待機しません。
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// NewSharedPacer は並列ワーカー間で共有する Pacer を生成します。
// interval が0以下の場合は待機しません。
func NewSharedPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{interval: interval, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait は次のリクエストが許可されるまでブロックします。
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.limiter != nil {
		return p.limiter.Wait(ctx)
	}

	p.mu.Lock()
	last := p.lastDone
	p.mu.Unlock()
	if p.interval <= 0 || last.IsZero() {
		return nil
	}

	remaining := p.interval - time.Since(last)
	if remaining <= 0 {
		return nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done はリクエストの完了を記録します。共有モードでは何もしません。
func (p *Pacer) Done() {
	if p.limiter != nil {
		return
	}
	p.mu.Lock()
	p.lastDone = time.Now()
	p.mu.Unlock()
}
