// Package logger builds the zap loggers used by the CLI and the HTTP server.
package logger

import (
	"strings"

	"github.com/jonathan/posting-parser/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxItemLogLength bounds item text attached to warning log entries
const MaxItemLogLength = 120

// New returns a console or JSON logger writing to stderr
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	return cfg.Build()
}

// TruncateForLog shortens s to limit runes, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// WarningFields returns the fields logged for a parser warning
func WarningFields(postingID string, w types.Warning) []zap.Field {
	fields := []zap.Field{
		zap.String("posting_id", postingID),
		zap.String("kind", w.Kind),
	}
	if item := TruncateForLog(w.Item, MaxItemLogLength); item != "" {
		fields = append(fields, zap.String("item", item))
	}
	return fields
}

// LogWarnings writes each parser warning at Warn level
func LogWarnings(log *zap.Logger, postingID string, warnings []types.Warning) {
	for _, w := range warnings {
		log.Warn(w.Message, WarningFields(postingID, w)...)
	}
}
