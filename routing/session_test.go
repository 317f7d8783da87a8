package routing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyByName(t *testing.T) {
	t.Parallel()

	for name, expect := range map[string]Policy{
		PolicyGlobal:   GlobalPolicy{},
		PolicyLocal:    LocalPolicy{},
		PolicyDisabled: DisabledPolicy{},
		"":             DisabledPolicy{},
	} {
		policy, err := PolicyByName(name)
		require.NoError(t, err)
		require.Equal(t, expect, policy)
	}
	_, err := PolicyByName("flood")
	require.ErrorIs(t, err, errUnknownPolicy)
}

// path a - b - c where only a and b contacted before b contacts c.
func pathSessions(tb testing.TB, policy Policy) *Protocol {
	const a, b, c UserID = 1, 2, 3
	p := newTestProtocol(tb, testConfig(), WithPolicy(policy))
	p.OnSession(a, b, nil)
	p.OnSession(b, c, nil)
	p.OnSession(c, b, nil)
	return p
}

func TestSessionPropagation(t *testing.T) {
	t.Parallel()

	const a, b, c UserID = 1, 2, 3
	t.Run("local", func(t *testing.T) {
		t.Parallel()
		p := pathSessions(t, LocalPolicy{})
		require.True(t, p.InSession(b, a))
		require.True(t, p.InSession(c, b))
		require.False(t, p.InSession(c, a))
		require.False(t, p.InSession(a, b))
	})
	t.Run("global", func(t *testing.T) {
		t.Parallel()
		p := pathSessions(t, GlobalPolicy{})
		require.True(t, p.InSession(b, a))
		require.True(t, p.InSession(c, b))
		require.True(t, p.InSession(c, a))
		require.True(t, p.InSession(b, c))
		require.False(t, p.InSession(a, c))
	})
	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		p := pathSessions(t, DisabledPolicy{})
		for _, owner := range []UserID{a, b, c} {
			for _, member := range []UserID{a, b, c} {
				require.False(t, p.InSession(owner, member))
			}
		}
	})
}

func TestSessionContactsOnly(t *testing.T) {
	t.Parallel()

	const a, b, c UserID = 1, 2, 3
	graph := Contacts{
		a: {b},
		b: {a, c},
		c: {b},
	}
	cfg := testConfig()
	cfg.ContactsOnly = true
	t.Run("global", func(t *testing.T) {
		t.Parallel()
		p := newTestProtocol(t, cfg, WithPolicy(GlobalPolicy{}))
		p.OnSession(a, b, graph)
		p.OnSession(b, c, graph)
		require.True(t, p.InSession(b, a))
		require.True(t, p.InSession(c, b))
		require.False(t, p.InSession(c, a), "a is not a contact of c")
	})
	t.Run("local", func(t *testing.T) {
		t.Parallel()
		p := newTestProtocol(t, cfg, WithPolicy(LocalPolicy{}))
		p.OnSession(a, c, graph)
		require.False(t, p.InSession(c, a))
		p.OnSession(b, c, graph)
		require.True(t, p.InSession(c, b))
	})
}
