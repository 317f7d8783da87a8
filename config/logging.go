package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meshmessaging/usenix23/log"
)

// LogEncoder defines a log encoder kind.
type LogEncoder = string

const (
	defaultLoggingLevel = zapcore.InfoLevel
	// ConsoleLogEncoder represents logging with plain text.
	ConsoleLogEncoder LogEncoder = log.ConsoleEncoder
	// JSONLogEncoder represents logging with JSON.
	JSONLogEncoder LogEncoder = log.JSONEncoder
)

// LoggerConfig holds the encoder and level of the process logger.
type LoggerConfig struct {
	Encoder LogEncoder `mapstructure:"log-encoder"`
	Level   string     `mapstructure:"level"`
}

func defaultLoggingConfig() LoggerConfig {
	return LoggerConfig{
		Encoder: ConsoleLogEncoder,
		Level:   defaultLoggingLevel.String(),
	}
}

func (cfg *LoggerConfig) Validate() error {
	switch cfg.Encoder {
	case ConsoleLogEncoder, JSONLogEncoder:
	default:
		return fmt.Errorf("unknown log encoder %q", cfg.Encoder)
	}
	if _, err := zap.ParseAtomicLevel(cfg.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
