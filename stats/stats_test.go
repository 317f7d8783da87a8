package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/meshmessaging/usenix23/routing"
)

func TestNewSketch(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc   string
		values []float64
		expect Sketch
	}{
		{"empty", nil, Sketch{}},
		{"single", []float64{3}, Sketch{Count: 1, Mean: 3, Min: 3, Max: 3}},
		{"population", []float64{1, 2, 3, 4}, Sketch{Count: 4, Mean: 2.5, StdDev: 1.118, Min: 1, Max: 4}},
		{"rounded", []float64{0, 0, 1}, Sketch{Count: 3, Mean: 0.333, StdDev: 0.471, Min: 0, Max: 1}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expect, NewSketch(tc.values))
		})
	}
}

func newProtocol(tb testing.TB, cfg routing.Config, opts ...routing.Opt) *routing.Protocol {
	p, err := routing.New(append([]routing.Opt{routing.WithConfig(cfg)}, opts...)...)
	require.NoError(tb, err)
	return p
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	cfg := routing.DefaultConfig()
	cfg.HopLimit = 1
	cfg.ContactsOnly = false
	p := newProtocol(t, cfg)
	p.OnSend(0, 1, 2, "a")
	p.OnSend(0, 1, 3, "b")
	p.OnSend(0, 1, 6, "d")
	p.OnLink(2, 1, []routing.UserID{2}, false)
	p.OnLink(3, 2, []routing.UserID{3}, false)
	p.OnSend(4, 1, 5, "c")

	expect := Summary{
		Sent:         4,
		Received:     2,
		DeliveryRate: 0.5,
		HopLimited:   1,
		InFlight:     1,
		Hops:         Sketch{Count: 2, Mean: 0.5, StdDev: 0.5, Min: 0, Max: 1},
		Latency:      Sketch{Count: 2, Mean: 2.5, StdDev: 0.5, Min: 2, Max: 3},
		PerReceived:  Sketch{Count: 2},
	}
	got := Summarize(p.Log().Sent(), p.Log())
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeBatches(t *testing.T) {
	t.Parallel()

	const source, relay, target routing.UserID = 1, 3, 4
	cfg := routing.DefaultConfig()
	cfg.ContactsOnly = false
	p := newProtocol(t, cfg, routing.WithPolicy(routing.LocalPolicy{}))
	p.OnSession(target, relay, nil)
	p.OnSend(0, source, target, "a")
	p.OnSend(0, source, target, "b")
	p.OnLink(0, source, []routing.UserID{relay}, false)
	p.BeforeLink(1)
	p.OnLink(1, relay, []routing.UserID{target}, false)

	got := Summarize(p.Log().Sent(), p.Log())
	require.Equal(t, 2, got.Received)
	require.Equal(t, 1.0, got.DeliveryRate)
	require.Equal(t, 1, got.Reencryptions)
	require.Equal(t, 1, got.ReencryptionsReceived)
	require.Equal(t, Sketch{Count: 2, Mean: 1, Min: 1, Max: 1}, got.PerReceived)
	require.Equal(t, Sketch{Count: 2, Mean: 1, Min: 1, Max: 1}, got.Hops)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	p := newProtocol(t, routing.DefaultConfig())
	require.Equal(t, Summary{}, Summarize(nil, p.Log()))
}
