// Package presets registers named configurations of experiments.
package presets

import (
	"fmt"
	"maps"
	"slices"

	"github.com/meshmessaging/usenix23/config"
	"github.com/meshmessaging/usenix23/routing"
)

var presets = map[string]config.Config{}

func register(name string, cfg config.Config) {
	if _, exist := presets[name]; exist {
		panic(fmt.Sprintf("preset %s already registered", name))
	}
	cfg.Preset = name
	presets[name] = cfg
}

// Options returns names of every registered preset in lexicographic order.
func Options() []string {
	return slices.Sorted(maps.Keys(presets))
}

// Get a copy of the preset registered under name.
func Get(name string) (config.Config, error) {
	cfg, exist := presets[name]
	if !exist {
		return config.Config{}, fmt.Errorf("preset %s is not registered. select one of %v", name, Options())
	}
	return cfg, nil
}

// experiment is the common ground of the presets: 20x20 grid, 100 ticks,
// 5 messages per tick on average, sparse social graph with global sessions.
func experiment(users, hops, replication, move int) config.Config {
	conf := config.DefaultConfig()
	conf.Sim.Users = users
	conf.Sim.Width = 20
	conf.Sim.Height = 20
	conf.Sim.Ticks = 100
	conf.Sim.SendRate = 5
	conf.Sim.Degree = 0.1
	conf.Sim.MoveDist = move

	conf.Routing.HopLimit = hops
	conf.Routing.ReplicationLimit = replication
	conf.Routing.Policy = routing.PolicyGlobal
	return conf
}
