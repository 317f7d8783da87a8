package sim

import (
	"math"
	"math/rand"
	"slices"

	"github.com/meshmessaging/usenix23/routing"
)

// SocialGraph is an undirected small world graph of social contacts.
type SocialGraph struct {
	adjacency []map[routing.UserID]struct{}
	contacts  [][]routing.UserID
}

// NewSocialGraph generates a Watts-Strogatz graph. Each user is connected to
// the nearest degree*users users on a ring and every lattice edge is rewired
// to a random user with probability rewire.
func NewSocialGraph(rng *rand.Rand, users int, degree, rewire float64) *SocialGraph {
	g := &SocialGraph{adjacency: make([]map[routing.UserID]struct{}, users)}
	for i := range g.adjacency {
		g.adjacency[i] = map[routing.UserID]struct{}{}
	}
	half := int(math.Round(degree * float64(users) / 2))
	half = max(1, min(half, (users-1)/2))
	for j := 1; j <= half; j++ {
		for u := 0; u < users; u++ {
			g.connect(routing.UserID(u), routing.UserID((u+j)%users))
		}
	}
	for j := 1; j <= half; j++ {
		for u := 0; u < users; u++ {
			v := routing.UserID((u + j) % users)
			from := routing.UserID(u)
			if !g.connected(from, v) || rng.Float64() >= rewire {
				continue
			}
			if len(g.adjacency[u]) >= users-1 {
				continue
			}
			w := routing.UserID(rng.Intn(users))
			for w == from || g.connected(from, w) {
				w = routing.UserID(rng.Intn(users))
			}
			g.disconnect(from, v)
			g.connect(from, w)
		}
	}
	g.contacts = make([][]routing.UserID, users)
	for u, peers := range g.adjacency {
		contacts := make([]routing.UserID, 0, len(peers))
		for peer := range peers {
			contacts = append(contacts, peer)
		}
		slices.Sort(contacts)
		g.contacts[u] = contacts
	}
	return g
}

func (g *SocialGraph) connect(u, v routing.UserID) {
	g.adjacency[u][v] = struct{}{}
	g.adjacency[v][u] = struct{}{}
}

func (g *SocialGraph) disconnect(u, v routing.UserID) {
	delete(g.adjacency[u], v)
	delete(g.adjacency[v], u)
}

func (g *SocialGraph) connected(u, v routing.UserID) bool {
	_, exist := g.adjacency[u][v]
	return exist
}

// Contacts returns sorted contacts of user. The slice must not be modified.
func (g *SocialGraph) Contacts(user routing.UserID) []routing.UserID {
	if int(user) >= len(g.contacts) {
		return nil
	}
	return g.contacts[user]
}

// Edges is the number of undirected edges.
func (g *SocialGraph) Edges() int {
	total := 0
	for _, contacts := range g.contacts {
		total += len(contacts)
	}
	return total / 2
}
