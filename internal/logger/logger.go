// Package logger は、スクレイパー全体で利用する構造化ロガーを提供します。
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger は、構造化ログ出力のインターフェースです。
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field は zap.Field の型エイリアスです。
type Field = zap.Field

// Config はロガーの設定です。
type Config struct {
	Level       string   // debug, info, warn, error
	OutputPaths []string // 出力先 (デフォルト: stderr)
}

const DefaultLevel = "info"

// SetDefaults は未設定の項目にデフォルト値を適用します。
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if len(c.OutputPaths) == 0 {
		// 進捗表示 (stdout) と混ざらないよう stderr に出力する
		c.OutputPaths = []string{"stderr"}
	}
}

type zapLogger struct {
	logger *zap.Logger
}

// New は設定に従って新しい Logger を生成します。
func New(cfg Config) (Logger, error) {
	cfg.SetDefaults()

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Encoding = "console"
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zapCfg.OutputPaths = cfg.OutputPaths
	zapCfg.DisableStacktrace = true

	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("zapロガーの構築に失敗しました: %w", err)
	}
	return &zapLogger{logger: z}, nil
}

// NewNop は何も出力しない Logger を返します。テストで利用します。
func NewNop() Logger {
	return &zapLogger{logger: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.logger.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.logger.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// MaxErrorLength は、ログに記録するエラーメッセージの最大文字数です。
const MaxErrorLength = 50

// String は文字列フィールドを生成します。
func String(key, val string) Field { return zap.String(key, val) }

// Int は整数フィールドを生成します。
func Int(key string, val int) Field { return zap.Int(key, val) }

// Duration は時間フィールドを生成します。
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Error は、先頭 MaxErrorLength 文字に切り詰めたエラーメッセージのフィールドを生成します。
func Error(err error) Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", Truncate(err.Error(), MaxErrorLength))
}

// Truncate は文字列を最大 n 文字 (rune単位) に切り詰めます。
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
