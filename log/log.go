// Package log builds the zap loggers used by the meshnet tools.
package log

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// ConsoleEncoder writes plain text lines.
	ConsoleEncoder = "console"
	// JSONEncoder writes one JSON object per line.
	JSONEncoder = "json"
)

// NewWithLevel creates a logger with a fixed level and with a set of (optional) hooks.
func NewWithLevel(w io.Writer, level zap.AtomicLevel, encoder zapcore.Encoder, hooks ...func(zapcore.Entry) error) *zap.Logger {
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(zapcore.RegisterHooks(core, hooks...))
}

// New parses level and encoder kind and creates a logger writing to w.
func New(w io.Writer, level, encoder string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	enc, err := newEncoder(encoder)
	if err != nil {
		return nil, err
	}
	return NewWithLevel(w, lvl, enc), nil
}

func newEncoder(kind string) (zapcore.Encoder, error) {
	switch kind {
	case ConsoleEncoder, "":
		return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), nil
	case JSONEncoder:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	default:
		return nil, fmt.Errorf("unknown log encoder %q", kind)
	}
}
