// =============================================================================
// logging.go - ログ出力
// =============================================================================
//
// warnf / infof / errorf は従来どおり使えるが、出力先は zap の SugaredLogger。
// 標準出力はJSON出力（-json）に使うため、ログは標準エラー出力に書く。
//
// =============================================================================
package pipeline

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logMu  sync.RWMutex
	logger = zap.NewNop().Sugar()
)

// NewLogger builds a JSON logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return z, nil
}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(z *zap.Logger) {
	if z == nil {
		z = zap.NewNop()
	}
	logMu.Lock()
	logger = z.Sugar()
	logMu.Unlock()
}

// Logger returns the current package logger.
func Logger() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
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

// warnf は警告メッセージを出力する
func warnf(format string, args ...any) {
	Logger().Warnf(format, args...)
}

// infof は情報メッセージを出力する
func infof(format string, args ...any) {
	Logger().Infof(format, args...)
}

// errorf はエラーメッセージを出力する（プログラムは終了しない）
func errorf(format string, args ...any) {
	Logger().Errorf(format, args...)
}
