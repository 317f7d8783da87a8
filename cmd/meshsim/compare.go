package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meshmessaging/usenix23/routing"
)

// variant of the routing config evaluated against the same simulation.
type variant struct {
	Batching bool
	Policy   string
}

func (v variant) String() string {
	if v.Batching {
		return "batching/" + v.Policy
	}
	return "plain/" + v.Policy
}

func variants() []variant {
	var rst []variant
	for _, batching := range []bool{true, false} {
		for _, policy := range []string{routing.PolicyGlobal, routing.PolicyLocal, routing.PolicyDisabled} {
			rst = append(rst, variant{Batching: batching, Policy: policy})
		}
	}
	return rst
}

func newCompareCommand(o *options) *cobra.Command {
	var parallel int
	c := &cobra.Command{
		Use:   "compare",
		Short: "simulate every combination of batching and session policy on the same network",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if err := o.configure(c); err != nil {
				return err
			}
			logger, err := o.logger(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			vs := variants()
			outcomes := make([]outcome, len(vs))
			eg, ctx := errgroup.WithContext(ctx)
			if parallel > 0 {
				eg.SetLimit(parallel)
			}
			for i, v := range vs {
				rcfg := o.conf.Routing
				rcfg.Batching = v.Batching
				rcfg.Policy = v.Policy
				eg.Go(func() error {
					out, err := simulate(ctx, logger.With(zap.Stringer("variant", v)), rcfg, o.conf.Sim)
					if err != nil {
						return fmt.Errorf("%s: %w", v, err)
					}
					outcomes[i] = out
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "variant\tsent\treceived\trate\thop-limited\tin-flight\thops\tlatency\treencryptions")
			for i, v := range vs {
				s := outcomes[i].Summary
				fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%d\t%d\t%.3f\t%.3f\t%d\n",
					v, s.Sent, s.Received, s.DeliveryRate, s.HopLimited, s.InFlight,
					s.Hops.Mean, s.Latency.Mean, s.Reencryptions)
			}
			return w.Flush()
		},
	}
	c.Flags().IntVar(&parallel, "parallel", 0, "number of variants simulated at once, unlimited if 0")
	return c
}
