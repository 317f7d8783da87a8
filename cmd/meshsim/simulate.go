package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/meshmessaging/usenix23/routing"
	"github.com/meshmessaging/usenix23/sim"
	"github.com/meshmessaging/usenix23/stats"
)

type outcome struct {
	Result  sim.Result
	Counts  routing.Counts
	Summary stats.Summary
}

func simulate(
	ctx context.Context,
	logger *zap.Logger,
	rcfg routing.Config,
	scfg sim.Config,
	opts ...routing.Opt,
) (outcome, error) {
	opts = append([]routing.Opt{
		routing.WithConfig(rcfg),
		routing.WithLogger(logger.Named("routing")),
	}, opts...)
	p, err := routing.New(opts...)
	if err != nil {
		return outcome{}, err
	}
	runner, err := sim.New(scfg, sim.WithLogger(logger.Named("sim")))
	if err != nil {
		return outcome{}, err
	}
	rst, err := runner.Run(ctx, p)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		Result:  rst,
		Counts:  p.Checkpoint(),
		Summary: stats.Summarize(rst.Sent, p.Log()),
	}, nil
}
