package logging

import (
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Fields carries structured context for a single log line.
type Fields map[string]interface{}

// Logger is a thin leveled wrapper around zap.
type Logger struct {
	zl    *zap.Logger
	level Level
}

// New creates a JSON logger writing to stderr.
func New(level Level) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(w io.Writer, level Level) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level.zapLevel(),
	)

	return &Logger{zl: zap.New(core), level: level}
}

// ParseLevel maps a config string to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Level reports the minimum level this logger emits.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.zl.Debug(msg, toZap(fields)...)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.zl.Info(msg, toZap(fields)...)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.zl.Warn(msg, toZap(fields)...)
}

func (l *Logger) Error(msg string, fields ...Fields) {
	l.zl.Error(msg, toZap(fields)...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func WithField(key string, value interface{}) Fields {
	return Fields{key: value}
}

func WithFields(fields map[string]interface{}) Fields {
	return Fields(fields)
}

func toZap(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		// Stable key order keeps the output diffable.
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Any(k, f[k]))
		}
	}
	return out
}
