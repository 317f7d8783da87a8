package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/meshmessaging/usenix23/config"
	"github.com/meshmessaging/usenix23/config/presets"
	"github.com/meshmessaging/usenix23/log"
)

// options are shared by every subcommand. Flags write into conf directly.
type options struct {
	fs         afero.Fs
	configPath string
	conf       config.Config
}

func newRootCommand() *cobra.Command {
	return newCommand(afero.NewOsFs())
}

func newCommand(fs afero.Fs) *cobra.Command {
	o := &options{fs: fs, conf: config.DefaultConfig()}
	root := &cobra.Command{
		Use:           "meshsim",
		Short:         "simulate store-carry-forward routing with batching",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&o.conf.Preset, "preset", "p", "",
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))
	flags.StringVarP(&o.configPath, "config", "c", "", "load configuration from file")
	flags.StringVar(&o.conf.Logging.Level, "log-level", o.conf.Logging.Level, "log level")
	flags.StringVar(&o.conf.Logging.Encoder, "log-encoder", o.conf.Logging.Encoder, "log encoder, console or json")

	flags.IntVar(&o.conf.Sim.Users, "users", o.conf.Sim.Users, "number of simulated users")
	flags.IntVar(&o.conf.Sim.Ticks, "ticks", o.conf.Sim.Ticks, "number of simulated ticks")
	flags.Int64Var(&o.conf.Sim.Seed, "seed", o.conf.Sim.Seed, "seed of the simulation")
	flags.BoolVar(&o.conf.Sim.Deferred, "deferred", o.conf.Sim.Deferred, "admit relayed copies on the next tick")

	flags.IntVar(&o.conf.Routing.HopLimit, "hop-limit", o.conf.Routing.HopLimit, "hops a message may travel")
	flags.IntVar(&o.conf.Routing.ReplicationLimit, "replication-limit", o.conf.Routing.ReplicationLimit,
		"forwarding attempts of a carried message")
	flags.BoolVar(&o.conf.Routing.Batching, "batching", o.conf.Routing.Batching, "fold messages into batches")
	flags.StringVar(&o.conf.Routing.Policy, "policy", o.conf.Routing.Policy, "session policy: global, session or none")

	flags.IntVar(&o.conf.Metrics.Port, "metrics-port", o.conf.Metrics.Port, "serve metrics on port if positive")
	flags.StringVar(&o.conf.Metrics.PushURL, "metrics-push", o.conf.Metrics.PushURL,
		"push metrics to url once the run is over")

	root.AddCommand(
		newRunCommand(o),
		newCompareCommand(o),
		newReplayCommand(o),
		newPresetsCommand(),
	)
	return root
}

// configure loads the preset and the config file into conf and applies
// flags set on the command line on top of them.
func (o *options) configure(c *cobra.Command) error {
	changed := map[string]string{}
	c.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})
	if err := loadConfig(o.fs, &o.conf, o.conf.Preset, o.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	for name, value := range changed {
		if err := c.Flags().Set(name, value); err != nil {
			return fmt.Errorf("apply flag %s: %w", name, err)
		}
	}
	return o.conf.Validate()
}

func (o *options) logger(c *cobra.Command) (*zap.Logger, error) {
	return log.New(c.ErrOrStderr(), o.conf.Logging.Level, o.conf.Logging.Encoder)
}
