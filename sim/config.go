package sim

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

var errInvalidConfig = errors.New("invalid simulation config")

// Config of the synthetic network.
type Config struct {
	Users  int   `mapstructure:"users" json:"users"`
	Width  int   `mapstructure:"width" json:"width"`
	Height int   `mapstructure:"height" json:"height"`
	Ticks  int   `mapstructure:"ticks" json:"ticks"`
	Seed   int64 `mapstructure:"seed" json:"seed"`
	// SendRate is the expected number of messages originated per tick.
	SendRate float64 `mapstructure:"send-rate" json:"send-rate"`
	// MoveProb is the probability that a user moves on a tick.
	MoveProb float64 `mapstructure:"move-prob" json:"move-prob"`
	// MoveDist bounds the step on each axis.
	MoveDist int `mapstructure:"move-dist" json:"move-dist"`
	// LinkDist is the euclidean range within which users are linked.
	LinkDist float64 `mapstructure:"link-dist" json:"link-dist"`
	// Degree is the fraction of users that are social contacts of a user.
	Degree float64 `mapstructure:"degree" json:"degree"`
	// Rewire is the probability to rewire a lattice edge of the social graph.
	Rewire float64 `mapstructure:"rewire" json:"rewire"`
	// Deferred stages relayed copies until the next tick.
	Deferred bool `mapstructure:"deferred" json:"deferred"`
}

func DefaultConfig() Config {
	return Config{
		Users:    250,
		Width:    20,
		Height:   20,
		Ticks:    100,
		Seed:     1,
		SendRate: 5,
		MoveProb: 1,
		MoveDist: 1,
		LinkDist: 1,
		Degree:   0.1,
		Rewire:   0.5,
		Deferred: true,
	}
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.Users < 2:
		return fmt.Errorf("%w: at least 2 users required, got %d", errInvalidConfig, cfg.Users)
	case cfg.Width < 1 || cfg.Height < 1:
		return fmt.Errorf("%w: grid %dx%d is empty", errInvalidConfig, cfg.Width, cfg.Height)
	case cfg.Ticks < 0:
		return fmt.Errorf("%w: ticks %d is negative", errInvalidConfig, cfg.Ticks)
	case cfg.SendRate < 0:
		return fmt.Errorf("%w: send rate %v is negative", errInvalidConfig, cfg.SendRate)
	case cfg.MoveProb < 0 || cfg.MoveProb > 1:
		return fmt.Errorf("%w: move probability %v not in [0, 1]", errInvalidConfig, cfg.MoveProb)
	case cfg.MoveDist < 0:
		return fmt.Errorf("%w: move distance %d is negative", errInvalidConfig, cfg.MoveDist)
	case cfg.LinkDist < 0:
		return fmt.Errorf("%w: link distance %v is negative", errInvalidConfig, cfg.LinkDist)
	case cfg.Degree <= 0 || cfg.Degree > 1:
		return fmt.Errorf("%w: degree %v not in (0, 1]", errInvalidConfig, cfg.Degree)
	case cfg.Rewire < 0 || cfg.Rewire > 1:
		return fmt.Errorf("%w: rewire probability %v not in [0, 1]", errInvalidConfig, cfg.Rewire)
	}
	return nil
}

func (cfg *Config) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddInt("users", cfg.Users)
	encoder.AddInt("width", cfg.Width)
	encoder.AddInt("height", cfg.Height)
	encoder.AddInt("ticks", cfg.Ticks)
	encoder.AddInt64("seed", cfg.Seed)
	encoder.AddFloat64("send rate", cfg.SendRate)
	encoder.AddFloat64("move probability", cfg.MoveProb)
	encoder.AddInt("move distance", cfg.MoveDist)
	encoder.AddFloat64("link distance", cfg.LinkDist)
	encoder.AddFloat64("degree", cfg.Degree)
	encoder.AddFloat64("rewire", cfg.Rewire)
	encoder.AddBool("deferred", cfg.Deferred)
	return nil
}
