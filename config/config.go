// Package config holds the configuration of a meshsim run.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/meshmessaging/usenix23/routing"
	"github.com/meshmessaging/usenix23/sim"
)

// Config combines the configuration of every component.
type Config struct {
	// Preset names the preset the file refines. Ignored if a preset is given explicitly.
	Preset  string         `mapstructure:"preset"`
	Routing routing.Config `mapstructure:"routing"`
	Sim     sim.Config     `mapstructure:"sim"`
	Logging LoggerConfig   `mapstructure:"logging"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// MetricsConfig controls how metrics leave the process.
type MetricsConfig struct {
	// Port serves /metrics if positive.
	Port int `mapstructure:"port"`
	// PushURL is a pushgateway receiving metrics once the run is over.
	PushURL        string        `mapstructure:"push-url"`
	PushJob        string        `mapstructure:"push-job"`
	PushRetries    int           `mapstructure:"push-retries"`
	PushRetryDelay time.Duration `mapstructure:"push-retry-delay"`
}

func DefaultConfig() Config {
	return Config{
		Routing: routing.DefaultConfig(),
		Sim:     sim.DefaultConfig(),
		Logging: defaultLoggingConfig(),
		Metrics: MetricsConfig{
			PushJob:        "meshsim",
			PushRetries:    3,
			PushRetryDelay: time.Second,
		},
	}
}

func (cfg *Config) Validate() error {
	if err := cfg.Routing.Validate(); err != nil {
		return err
	}
	if err := cfg.Sim.Validate(); err != nil {
		return err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return err
	}
	if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
		return fmt.Errorf("metrics port %d out of range", cfg.Metrics.Port)
	}
	if cfg.Metrics.PushRetries < 0 {
		return fmt.Errorf("push retries %d is negative", cfg.Metrics.PushRetries)
	}
	return nil
}

// LoadConfig reads the file at path into v. An empty path reads nothing.
func LoadConfig(fs afero.Fs, path string, v *viper.Viper) error {
	if path == "" {
		return nil
	}
	v.SetFs(fs)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes values read into v over cfg. Keys absent in v keep
// the values already in cfg and unknown keys are rejected.
func Unmarshal(v *viper.Viper, cfg *Config) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		WithZeroFields(),
		WithIgnoreUntagged(),
		WithErrorUnused(),
	}
	if err := v.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func WithZeroFields() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ZeroFields = true
	}
}

func WithIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

func WithErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}
