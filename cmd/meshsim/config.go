package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/meshmessaging/usenix23/config"
	"github.com/meshmessaging/usenix23/config/presets"
)

// loadConfig loads config and preset (if provided) into the provided config.
// It first loads the preset and then overrides it with values from the config file.
func loadConfig(fs afero.Fs, cfg *config.Config, preset, path string) error {
	v := viper.New()
	if err := config.LoadConfig(fs, path, v); err != nil {
		return err
	}

	if len(preset) == 0 && v.IsSet("preset") {
		preset = v.GetString("preset")
	}
	if len(preset) > 0 {
		p, err := presets.Get(preset)
		if err != nil {
			return err
		}
		*cfg = p
	}

	if err := config.Unmarshal(v, cfg); err != nil {
		return err
	}
	cfg.Preset = preset
	return nil
}
