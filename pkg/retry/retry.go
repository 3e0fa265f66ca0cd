package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxAttempts は、初回を含む最大試行回数です。
	DefaultMaxAttempts = 3

	// DefaultInterval は、試行間の固定待機時間です。
	DefaultInterval = 1 * time.Second
)

// Operation はリトライ可能な処理を表す関数です。成功時は nil を返します。
type Operation func() error

// ShouldRetryFunc はエラーを受け取り、そのエラーがリトライ可能かどうかを判定する関数です。
type ShouldRetryFunc func(error) bool

// Config はリトライ動作を設定するための構造体です。
type Config struct {
	MaxAttempts uint64        // 初回を含む最大試行回数 (0 は 1 とみなす)
	Interval    time.Duration // 試行間の固定待機時間
}

// DefaultConfig はデフォルト設定 (3回試行、1秒間隔) を返します。
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

// Always はすべてのエラーをリトライ対象とする ShouldRetryFunc です。
func Always(error) bool { return true }

// newBackOffPolicy は固定間隔・回数上限付きのバックオフポリシーを生成します。
func newBackOffPolicy(ctx context.Context, cfg Config) backoff.BackOffContext {
	// WithMaxRetries(b, 0) は無制限になるため、1回のみの場合は StopBackOff を使う
	if cfg.MaxAttempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Interval), cfg.MaxAttempts-1)
	return backoff.WithContext(b, ctx)
}

// Do は固定間隔で操作をリトライします。
// shouldRetryFn が false を返したエラーは即座に返されます。
func Do(ctx context.Context, cfg Config, operationName string, op Operation, shouldRetryFn ShouldRetryFunc) error {
	var (
		lastErr  error
		attempts uint64
	)

	retryableOp := func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if shouldRetryFn != nil && !shouldRetryFn(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(retryableOp, newBackOffPolicy(ctx, cfg))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%sに失敗しました: コンテキストタイムアウト/キャンセル: %w", operationName, err)
	}
	return fmt.Errorf("%sに失敗しました (%d回試行): %w", operationName, attempts, lastErr)
}
