package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshmessaging/usenix23/routing"
)

func TestSocialGraphLattice(t *testing.T) {
	t.Parallel()

	g := NewSocialGraph(rand.New(rand.NewSource(1)), 10, 0.4, 0)
	require.Equal(t, []routing.UserID{1, 2, 8, 9}, g.Contacts(0))
	require.Equal(t, []routing.UserID{3, 4, 6, 7}, g.Contacts(5))
	require.Equal(t, 20, g.Edges())
	require.Nil(t, g.Contacts(10))
}

func TestSocialGraphRewired(t *testing.T) {
	t.Parallel()

	const users = 50
	for seed := int64(0); seed < 5; seed++ {
		g := NewSocialGraph(rand.New(rand.NewSource(seed)), users, 0.08, 0.5)
		require.Equal(t, users*2, g.Edges(), "rewiring keeps the number of edges")
		for u := routing.UserID(0); u < users; u++ {
			for _, v := range g.Contacts(u) {
				require.NotEqual(t, u, v)
				require.Contains(t, g.Contacts(v), u, "graph is undirected")
			}
		}
	}
}

func TestSocialGraphSmall(t *testing.T) {
	t.Parallel()

	g := NewSocialGraph(rand.New(rand.NewSource(1)), 2, 1, 1)
	require.Equal(t, []routing.UserID{1}, g.Contacts(0))
	require.Equal(t, []routing.UserID{0}, g.Contacts(1))
}
