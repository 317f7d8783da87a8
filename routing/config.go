package routing

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

var (
	errUnknownPolicy = errors.New("unknown session policy")
	errInvalidConfig = errors.New("invalid routing config")
)

type Config struct {
	HopLimit         int `mapstructure:"hop-limit" json:"hop-limit"`
	ReplicationLimit int `mapstructure:"replication-limit" json:"replication-limit"`
	// Batching folds carried messages for a session target into one batch.
	// If disabled every batch holds exactly one message.
	Batching bool `mapstructure:"batching" json:"batching"`
	// MaxBatch bounds the number of members per batch. Zero is unbounded.
	MaxBatch     int     `mapstructure:"max-batch" json:"max-batch"`
	HopReducer   Reducer `mapstructure:"hop-reducer" json:"hop-reducer"`
	RepReducer   Reducer `mapstructure:"rep-reducer" json:"rep-reducer"`
	ContactsOnly bool    `mapstructure:"contacts-only" json:"contacts-only"`
	Policy       string  `mapstructure:"policy" json:"policy"`
	// RecvFilterThreshold is the size above which a delivered message is
	// remembered by its target and never unpacked again.
	RecvFilterThreshold int `mapstructure:"recv-filter-threshold" json:"recv-filter-threshold"`
	// RecvFilterSize is the capacity of that memory per target.
	RecvFilterSize int `mapstructure:"recv-filter-size" json:"recv-filter-size"`
}

func DefaultConfig() Config {
	return Config{
		HopLimit:            10,
		ReplicationLimit:    20,
		Batching:            true,
		HopReducer:          ReduceMean,
		RepReducer:          ReduceMax,
		ContactsOnly:        true,
		Policy:              PolicyDisabled,
		RecvFilterThreshold: 100,
		RecvFilterSize:      1024,
	}
}

func (cfg *Config) Validate() error {
	if cfg.HopLimit < 0 {
		return fmt.Errorf("%w: hop limit %d is negative", errInvalidConfig, cfg.HopLimit)
	}
	if cfg.ReplicationLimit < 0 {
		return fmt.Errorf("%w: replication limit %d is negative", errInvalidConfig, cfg.ReplicationLimit)
	}
	if cfg.MaxBatch < 0 {
		return fmt.Errorf("%w: max batch %d is negative", errInvalidConfig, cfg.MaxBatch)
	}
	if err := cfg.HopReducer.Validate(); err != nil {
		return fmt.Errorf("%w: hop reducer: %w", errInvalidConfig, err)
	}
	if err := cfg.RepReducer.Validate(); err != nil {
		return fmt.Errorf("%w: rep reducer: %w", errInvalidConfig, err)
	}
	if _, err := PolicyByName(cfg.Policy); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	if cfg.RecvFilterSize <= 0 {
		return fmt.Errorf("%w: recv filter size must be positive", errInvalidConfig)
	}
	return nil
}

// batchLimit is the maximal number of members per batch, 0 if unbounded.
func (cfg *Config) batchLimit() int {
	if !cfg.Batching {
		return 1
	}
	return cfg.MaxBatch
}

func (cfg *Config) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddInt("hop limit", cfg.HopLimit)
	encoder.AddInt("replication limit", cfg.ReplicationLimit)
	encoder.AddBool("batching", cfg.Batching)
	encoder.AddInt("max batch", cfg.MaxBatch)
	encoder.AddString("hop reducer", string(cfg.HopReducer))
	encoder.AddString("rep reducer", string(cfg.RepReducer))
	encoder.AddBool("contacts only", cfg.ContactsOnly)
	encoder.AddString("policy", cfg.Policy)
	encoder.AddInt("recv filter threshold", cfg.RecvFilterThreshold)
	encoder.AddInt("recv filter size", cfg.RecvFilterSize)
	return nil
}
