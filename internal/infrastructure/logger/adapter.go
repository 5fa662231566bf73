package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chat-harvester/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type Config struct {
	Level      string
	Console    bool
	Dir        string
	RunName    string
	MaxSizeMB  int
	MaxBackups int
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Console:    true,
		Dir:        "log",
		MaxSizeMB:  20,
		MaxBackups: 5,
	}
}

type LoggerAdapter struct {
	zl *zap.Logger
}

// NewLoggerAdapter builds a zap logger that writes human-readable lines to
// stderr and JSON lines to a rotating file under cfg.Dir.
func NewLoggerAdapter(cfg Config) (*LoggerAdapter, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	var cores []zapcore.Core

	if cfg.Console {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			level,
		))
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(cfg.RunName))
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   filepath.Join(cfg.Dir, filename),
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
			}),
			level,
		))
	}

	if len(cores) == 0 {
		return NewNop(), nil
	}

	zl := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel))
	return &LoggerAdapter{zl: zl}, nil
}

// NewNop discards everything. Used by tests and by --quiet runs.
func NewNop() *LoggerAdapter {
	return &LoggerAdapter{zl: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(zl *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{zl: zl}
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.zl.Sugar().Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.zl.Sugar().Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.zl.Sugar().Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.zl.Sugar().Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{zl: l.zl.With(zap.Any(key, value))}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return &LoggerAdapter{zl: l.zl.With(zf...)}
}

func (l *LoggerAdapter) Close() error {
	// Sync on stderr returns EINVAL on some platforms; nothing to do about it.
	_ = l.zl.Sync()
	return nil
}

func sanitize(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	s = string(result)
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
