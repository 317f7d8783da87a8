// Package sim generates a synthetic contact network and drives a routing
// engine through it tick by tick.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/seehuhn/mt19937"
	"go.uber.org/zap"

	"github.com/meshmessaging/usenix23/routing"
)

//go:generate mockgen -package=sim -destination=./mocks.go -source=./runner.go

// Engine is the part of routing.Protocol driven by the simulation.
type Engine interface {
	OnSend(t routing.Tick, user, target routing.UserID, id routing.MessageID, opts ...routing.SendOpt)
	OnSession(user, link routing.UserID, graph routing.ContactGraph)
	BeforeLink(t routing.Tick)
	OnLink(t routing.Tick, user routing.UserID, links []routing.UserID, deferred bool)
	AfterLink()
}

type Opt func(*Runner)

func WithLogger(logger *zap.Logger) Opt {
	return func(r *Runner) {
		r.logger = logger
	}
}

func WithClock(clock clockwork.Clock) Opt {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithTickHook is called after every simulated tick.
func WithTickHook(hook func(routing.Tick)) Opt {
	return func(r *Runner) {
		r.hook = hook
	}
}

// Result of a run.
type Result struct {
	// Sent lists originated ids in order.
	Sent    []routing.MessageID
	Ticks   int
	Links   int
	Elapsed time.Duration
}

// Runner owns the randomness of a run. The same config always produces the
// same social graph, mobility and traffic.
type Runner struct {
	logger *zap.Logger
	clock  clockwork.Clock
	hook   func(routing.Tick)
	cfg    Config

	rng   *rand.Rand
	graph *SocialGraph
	world *World
}

func New(cfg Config, opts ...Opt) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mt := mt19937.New()
	mt.Seed(cfg.Seed)
	r := &Runner{
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
		cfg:    cfg,
		rng:    rand.New(mt),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.graph = NewSocialGraph(r.rng, cfg.Users, cfg.Degree, cfg.Rewire)
	r.world = NewWorld(r.rng, cfg)
	return r, nil
}

// Graph is the social graph used for targets and contacts-only sessions.
func (r *Runner) Graph() *SocialGraph {
	return r.graph
}

// Run simulates every tick. Cancelling ctx stops the run between ticks.
func (r *Runner) Run(ctx context.Context, engine Engine) (Result, error) {
	r.logger.Info("simulation started",
		zap.Object("config", &r.cfg),
		zap.Int("social edges", r.graph.Edges()),
	)
	var (
		rst   Result
		start = r.clock.Now()
	)
	for i := 0; i < r.cfg.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			rst.Elapsed = r.clock.Since(start)
			return rst, fmt.Errorf("simulation stopped at tick %d: %w", i, err)
		}
		t := routing.Tick(i)
		began := r.clock.Now()
		sent, err := r.send(t, engine)
		if err != nil {
			return rst, err
		}
		rst.Sent = append(rst.Sent, sent...)
		engine.BeforeLink(t)
		r.world.Move(r.rng)
		links := r.world.Links()
		total, linked := 0, 0
		for u, neighbors := range links {
			if len(neighbors) == 0 {
				continue
			}
			linked++
			user := routing.UserID(u)
			for _, link := range neighbors {
				engine.OnSession(user, link, r.graph)
			}
			engine.OnLink(t, user, neighbors, r.cfg.Deferred)
			total += len(neighbors)
		}
		rst.Links += total
		rst.Ticks++
		ticksCounter.Inc()
		linksPerTick.Observe(float64(total))
		linkedUsers.Set(float64(linked))
		tickDuration.Observe(r.clock.Since(began).Seconds())
		r.logger.Debug("tick simulated",
			zap.Uint32("tick", uint32(t)),
			zap.Int("sent", len(sent)),
			zap.Int("links", total),
		)
		if r.hook != nil {
			r.hook(t)
		}
	}
	engine.AfterLink()
	rst.Elapsed = r.clock.Since(start)
	r.logger.Info("simulation finished",
		zap.Int("ticks", rst.Ticks),
		zap.Int("sent", len(rst.Sent)),
		zap.Int("links", rst.Links),
		zap.Duration("elapsed", rst.Elapsed),
	)
	return rst, nil
}

func (r *Runner) send(t routing.Tick, engine Engine) ([]routing.MessageID, error) {
	n := poisson(r.rng, r.cfg.SendRate)
	sent := make([]routing.MessageID, 0, n)
	for i := 0; i < n; i++ {
		source := routing.UserID(r.rng.Intn(r.cfg.Users))
		contacts := r.graph.Contacts(source)
		if len(contacts) == 0 {
			continue
		}
		target := contacts[r.rng.Intn(len(contacts))]
		id, err := uuid.NewRandomFromReader(r.rng)
		if err != nil {
			return nil, fmt.Errorf("generate message id: %w", err)
		}
		msg := routing.MessageID(id.String())
		engine.OnSend(t, source, target, msg)
		sent = append(sent, msg)
		originated.Inc()
	}
	return sent, nil
}

// poisson samples the poisson distribution with mean lambda by counting
// uniform draws until their product falls below exp(-lambda).
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	for p := rng.Float64(); p > limit; p *= rng.Float64() {
		k++
	}
	return k
}
