package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	// 型付きのnil (*http.Response) を返すようにモック側で設定する
	return args.Get(0).(*http.Response), args.Error(1)
}

func newFastClient(options ...Option) *Client {
	opts := append([]Option{WithRetryInterval(time.Millisecond)}, options...)
	return New(time.Second, opts...)
}

func TestNew(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		client := New(0)
		assert.Equal(t, DefaultHTTPTimeout, client.httpClient.(*http.Client).Timeout)
		assert.Equal(t, uint64(3), client.retryConfig.MaxAttempts)
		assert.Equal(t, time.Second, client.retryConfig.Interval)
		assert.Equal(t, DefaultUserAgent, client.userAgent)
	})
	t.Run("custom options", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		client := New(5*time.Second,
			WithHTTPClient(mockClient),
			WithMaxAttempts(5),
			WithRetryInterval(10*time.Millisecond),
			WithUserAgent("test-agent"),
		)
		assert.Equal(t, mockClient, client.httpClient)
		assert.Equal(t, uint64(5), client.retryConfig.MaxAttempts)
		assert.Equal(t, 10*time.Millisecond, client.retryConfig.Interval)
		assert.Equal(t, "test-agent", client.userAgent)
	})
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{StatusCode: 404}
	assert.Equal(t, "HTTPステータスコードエラー: 404 Not Found", err.Error())
}

func TestFetchBytes(t *testing.T) {
	t.Run("successful fetch sends user agent", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		mockResponse := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte("<html></html>"))),
		}
		mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
			return req.Header.Get("User-Agent") == DefaultUserAgent && req.Method == http.MethodGet
		})).Return(mockResponse, nil).Once()

		client := newFastClient(WithHTTPClient(mockClient))
		body, err := client.FetchBytes(context.Background(), "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, []byte("<html></html>"), body)
		mockClient.AssertExpectations(t)
	})

	t.Run("network error is retried three times", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		var resp *http.Response
		mockClient.On("Do", mock.Anything).Return(resp, errors.New("network error")).Times(3)

		client := newFastClient(WithHTTPClient(mockClient))
		body, err := client.FetchBytes(context.Background(), "https://example.com")
		assert.Error(t, err)
		assert.Nil(t, body)
		mockClient.AssertNumberOfCalls(t, "Do", 3)
	})
}

func TestFetchBytes_RetriesEveryStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(status)
		}))

		client := newFastClient()
		_, err := client.FetchBytes(context.Background(), srv.URL)
		srv.Close()

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, status, statusErr.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "status %d", status)
	}
}

func TestFetchBytes_RecoversAfterTransientFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := newFastClient()
	body, err := client.FetchBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}
