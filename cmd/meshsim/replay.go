package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meshmessaging/usenix23/routing"
	"github.com/meshmessaging/usenix23/stats"
)

func newReplayCommand(o *options) *cobra.Command {
	var format, digest string
	c := &cobra.Command{
		Use:   "replay <trace>",
		Short: "replay a recorded trace and print the summary of the replayed log",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := o.conf.Logging.Validate(); err != nil {
				return err
			}
			logger, err := o.logger(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			f, err := o.fs.Open(args[0])
			if err != nil {
				return fmt.Errorf("open trace: %w", err)
			}
			defer f.Close()
			r := newDigestReader(f)
			p, err := routing.RunTrace(r, routing.Format(format), routing.WithLogger(logger.Named("routing")))
			if err != nil {
				return fmt.Errorf("replay %s: %w", args[0], err)
			}
			if digest != "" {
				if err := r.verify(digest); err != nil {
					return err
				}
			}
			summary := stats.Summarize(p.Log().Sent(), p.Log())
			counts := p.Log().Counts()
			logger.Info("trace replayed",
				zap.String("trace", args[0]),
				zap.Object("counts", &counts),
				zap.Object("summary", &summary),
			)
			return printJSON(c.OutOrStdout(), &summary)
		},
	}
	c.Flags().StringVar(&format, "format", string(routing.FormatJSON), "trace format, json or cbor")
	c.Flags().StringVar(&digest, "digest", "", "expected blake3 digest of the trace, as written in the report")
	return c
}
