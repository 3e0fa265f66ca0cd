package logger

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"短い文字列はそのまま", "abc", 5, "abc"},
		{"ちょうどの長さ", "abcde", 5, "abcde"},
		{"超過分を切り詰める", "abcdefgh", 5, "abcde"},
		{"マルチバイト文字はrune単位", "接続がタイムアウトしました", 4, "接続がタ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.n))
		})
	}
}

func TestError_TruncatesMessage(t *testing.T) {
	f := Error(errors.New(strings.Repeat("x", 80)))
	assert.Equal(t, "error", f.Key)
	assert.Len(t, f.String, MaxErrorLength)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "error", parseLevel("error").String())
	assert.Equal(t, "info", parseLevel("unknown").String())
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape.log")

	l, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.With(String("region", "brisbane")).Info("リージョン取得")
	_ = l.Sync()

	assert.FileExists(t, path)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Error("ignored", Error(errors.New("boom")))
		_ = l.Sync()
	})
}
