package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meshmessaging/usenix23/metrics"
	"github.com/meshmessaging/usenix23/routing"
)

func newRunCommand(o *options) *cobra.Command {
	var (
		tracePath   string
		traceFormat string
		reportPath  string
	)
	c := &cobra.Command{
		Use:   "run",
		Short: "simulate a single configuration and print its summary",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) (err error) {
			if err := o.configure(c); err != nil {
				return err
			}
			logger, err := o.logger(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			// os.Interrupt for all systems, syscall.SIGTERM is mainly for docker.
			ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if o.conf.Metrics.Port > 0 {
				srv := metrics.StartCollectingMetrics(o.conf.Metrics.Port, logger)
				defer srv.Shutdown(context.Background())
			}

			var (
				opts  []routing.Opt
				trace *traceFile
			)
			if tracePath != "" {
				if trace, err = createTrace(o.fs, tracePath, routing.Format(traceFormat)); err != nil {
					return err
				}
				defer func() {
					if cerr := trace.Close(); cerr != nil {
						err = errors.Join(err, fmt.Errorf("close trace: %w", cerr))
					}
				}()
				opts = append(opts, routing.WithTracer(trace.Tracer))
			}

			started := time.Now()
			out, err := simulate(ctx, logger, o.conf.Routing, o.conf.Sim, opts...)
			if err != nil {
				return err
			}
			logger.Info("run summary",
				zap.String("preset", o.conf.Preset),
				zap.Object("counts", &out.Counts),
				zap.Object("summary", &out.Summary),
			)
			if err := printJSON(c.OutOrStdout(), &out.Summary); err != nil {
				return err
			}
			if reportPath != "" {
				report := newReport(started, o.conf, out)
				if trace != nil {
					if err := trace.Close(); err != nil {
						return fmt.Errorf("close trace: %w", err)
					}
					report.Trace = &TraceInfo{
						Path:   tracePath,
						Format: routing.Format(traceFormat),
						Digest: trace.Digest(),
					}
				}
				if err := writeReport(reportPath, report); err != nil {
					return err
				}
			}
			if o.conf.Metrics.PushURL != "" {
				return metrics.Push(o.conf.Metrics.PushURL, o.conf.Metrics.PushJob,
					map[string]string{
						"preset": o.conf.Preset,
						"seed":   fmt.Sprint(o.conf.Sim.Seed),
					},
					metrics.WithRetries(o.conf.Metrics.PushRetries, o.conf.Metrics.PushRetryDelay),
					metrics.WithPushLogger(logger.Named("push")),
				)
			}
			return nil
		},
	}
	c.Flags().StringVar(&tracePath, "trace", "", "record every call to the routing engine to file")
	c.Flags().StringVar(&traceFormat, "trace-format", string(routing.FormatJSON), "trace format, json or cbor")
	c.Flags().StringVar(&reportPath, "report", "", "write the report of the run to file")
	return c
}
