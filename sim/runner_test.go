package sim

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/meshmessaging/usenix23/log/logtest"
	"github.com/meshmessaging/usenix23/routing"
)

// recorder keeps every call in order.
type recorder struct {
	calls []string
	users map[routing.UserID]bool
}

func (r *recorder) OnSend(t routing.Tick, user, target routing.UserID, id routing.MessageID, _ ...routing.SendOpt) {
	r.calls = append(r.calls, fmt.Sprintf("send %d %d %d %s", t, user, target, id))
}

func (r *recorder) OnSession(user, link routing.UserID, _ routing.ContactGraph) {
	r.calls = append(r.calls, fmt.Sprintf("session %d %d", user, link))
	if r.users == nil {
		r.users = map[routing.UserID]bool{}
	}
	r.users[user] = true
}

func (r *recorder) BeforeLink(t routing.Tick) {
	r.calls = append(r.calls, fmt.Sprintf("before %d", t))
}

func (r *recorder) OnLink(t routing.Tick, user routing.UserID, links []routing.UserID, deferred bool) {
	if !r.users[user] {
		panic(fmt.Sprintf("no session for user %d before link", user))
	}
	delete(r.users, user)
	r.calls = append(r.calls, fmt.Sprintf("link %d %d %v %v", t, user, links, deferred))
}

func (r *recorder) AfterLink() {
	r.calls = append(r.calls, "after")
}

func testSimConfig() Config {
	cfg := DefaultConfig()
	cfg.Users = 30
	cfg.Width, cfg.Height = 6, 6
	cfg.Ticks = 10
	cfg.Seed = 42
	cfg.Degree = 0.2
	return cfg
}

func TestRunnerDeterministic(t *testing.T) {
	t.Parallel()

	run := func() ([]string, Result) {
		r, err := New(testSimConfig(), WithLogger(logtest.New(t)), WithClock(clockwork.NewFakeClock()))
		require.NoError(t, err)
		var rec recorder
		rst, err := r.Run(context.Background(), &rec)
		require.NoError(t, err)
		return rec.calls, rst
	}
	first, rst := run()
	second, _ := run()
	require.Equal(t, first, second)
	require.Equal(t, 10, rst.Ticks)
	require.NotEmpty(t, rst.Sent)
	require.Positive(t, rst.Links)
	require.Zero(t, rst.Elapsed)
	require.Equal(t, "before 0", first[countSends(first, 0)])
	require.Equal(t, "after", first[len(first)-1])
}

func countSends(calls []string, tick int) int {
	prefix := fmt.Sprintf("send %d ", tick)
	n := 0
	for _, call := range calls {
		if len(call) > len(prefix) && call[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func TestRunnerSeeds(t *testing.T) {
	t.Parallel()

	sent := func(seed int64) []routing.MessageID {
		cfg := testSimConfig()
		cfg.Seed = seed
		r, err := New(cfg)
		require.NoError(t, err)
		rst, err := r.Run(context.Background(), &recorder{})
		require.NoError(t, err)
		return rst.Sent
	}
	require.NotEqual(t, sent(1), sent(2))
}

func TestRunnerTargetsAreContacts(t *testing.T) {
	t.Parallel()

	r, err := New(testSimConfig())
	require.NoError(t, err)
	p, err := routing.New()
	require.NoError(t, err)
	rst, err := r.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, rst.Sent, p.Log().Sent())
}

func TestRunnerEngine(t *testing.T) {
	t.Parallel()

	cfg := testSimConfig()
	cfg.Ticks = 30
	counts := func() routing.Counts {
		r, err := New(cfg)
		require.NoError(t, err)
		rcfg := routing.DefaultConfig()
		rcfg.Policy = routing.PolicyGlobal
		p, err := routing.New(routing.WithConfig(rcfg))
		require.NoError(t, err)
		_, err = r.Run(context.Background(), p)
		require.NoError(t, err)
		return p.Log().Counts()
	}
	first := counts()
	require.Equal(t, first, counts())
	require.Positive(t, first.Received)
}

func TestRunnerCancel(t *testing.T) {
	t.Parallel()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()
		r, err := New(testSimConfig())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rst, err := r.Run(ctx, &recorder{})
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, rst.Ticks)
	})
	t.Run("from hook", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		r, err := New(testSimConfig(), WithTickHook(func(tick routing.Tick) {
			if tick == 2 {
				cancel()
			}
		}))
		require.NoError(t, err)
		rec := &recorder{}
		rst, err := r.Run(ctx, rec)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 3, rst.Ticks)
		require.NotContains(t, rec.calls, "after")
	})
}

func TestRunnerElapsed(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	r, err := New(testSimConfig(), WithClock(clock), WithTickHook(func(routing.Tick) {
		clock.Advance(time.Second)
	}))
	require.NoError(t, err)
	rst, err := r.Run(context.Background(), &recorder{})
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, rst.Elapsed)
}

func TestNewInvalid(t *testing.T) {
	t.Parallel()

	cfg := testSimConfig()
	cfg.Users = 1
	_, err := New(cfg)
	require.ErrorIs(t, err, errInvalidConfig)

	cfg = testSimConfig()
	cfg.MoveProb = 2
	_, err = New(cfg)
	require.ErrorIs(t, err, errInvalidConfig)
}

func TestRunnerCallOrder(t *testing.T) {
	t.Parallel()

	cfg := testSimConfig()
	cfg.Ticks = 2
	cfg.SendRate = 0
	r, err := New(cfg)
	require.NoError(t, err)

	engine := NewMockEngine(gomock.NewController(t))
	first := engine.EXPECT().BeforeLink(routing.Tick(0))
	second := engine.EXPECT().BeforeLink(routing.Tick(1)).After(first)
	engine.EXPECT().OnSession(gomock.Any(), gomock.Any(), r.Graph()).After(first).AnyTimes()
	engine.EXPECT().OnLink(gomock.Any(), gomock.Any(), gomock.Any(), cfg.Deferred).After(first).AnyTimes()
	engine.EXPECT().AfterLink().After(second)

	rst, err := r.Run(context.Background(), engine)
	require.NoError(t, err)
	require.Empty(t, rst.Sent)
	require.Equal(t, 2, rst.Ticks)
}
