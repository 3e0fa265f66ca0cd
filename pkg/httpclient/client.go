package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shouni/go-clinic-scraper/internal/logger"
	"github.com/shouni/go-clinic-scraper/pkg/retry"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 15 * time.Second
	MaxBodySize        = int64(10 * 1024 * 1024) // 10MB: レスポンスボディの最大読み込みサイズ

	// サイトからのブロックを避けるためのUser-Agent
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// StatusError は 2xx 以外のHTTPステータスコードを示すエラー型です。
// ステータスの種類にかかわらずリトライ対象になります。
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPステータスコードエラー: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Doer は、標準の *http.Client.Do()と互換性のあるHTTPクライアントのインターフェースです。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client はHTTP GETと固定間隔リトライを管理します。
type Client struct {
	httpClient  Doer
	retryConfig retry.Config
	userAgent   string
	logger      logger.Logger
}

// Option はClientの設定を行うための関数型です。
type Option func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithMaxAttempts は初回を含む最大試行回数を設定します。
func WithMaxAttempts(n uint64) Option {
	return func(c *Client) {
		c.retryConfig.MaxAttempts = n
	}
}

// WithRetryInterval は試行間の待機時間を設定します。
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		c.retryConfig.Interval = d
	}
}

// WithUserAgent はリクエストに付与するUser-Agentを設定します。
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger は最終失敗時のログ出力先を設定します。
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New は、新しいClientを生成します。
func New(timeout time.Duration, options ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		retryConfig: retry.DefaultConfig(),
		userAgent:   DefaultUserAgent,
		logger:      logger.NewNop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// FetchBytes はURLからコンテンツを取得し、生のバイト配列として返します。
// タイムアウト、接続エラー、2xx以外のステータスはすべて一律にリトライされます。
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		var fetchErr error
		body, fetchErr = c.doFetch(ctx, url)
		return fetchErr
	}

	err := retry.Do(ctx, c.retryConfig, fmt.Sprintf("URL(%s)のフェッチ", url), op, retry.Always)
	if err != nil {
		c.logger.Warn("URLの取得に失敗しました", logger.String("url", url), logger.Error(err))
		return nil, err
	}
	return body, nil
}

// doFetch は実際の一度のHTTP GETリクエストを実行します。
func (c *Client) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GETリクエスト作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 接続を再利用できるよう、上限付きでボディを読み捨てる
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", err)
	}
	return body, nil
}
