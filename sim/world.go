package sim

import (
	"math"
	"math/rand"
	"slices"

	"github.com/meshmessaging/usenix23/routing"
)

type point struct {
	x, y int
}

// World places users on a bounded grid and moves them by a random walk.
type World struct {
	width, height int
	moveProb      float64
	moveDist      int
	linkDist      float64
	positions     []point
}

// NewWorld places users uniformly on the grid.
func NewWorld(rng *rand.Rand, cfg Config) *World {
	w := &World{
		width:     cfg.Width,
		height:    cfg.Height,
		moveProb:  cfg.MoveProb,
		moveDist:  cfg.MoveDist,
		linkDist:  cfg.LinkDist,
		positions: make([]point, cfg.Users),
	}
	for i := range w.positions {
		w.positions[i] = point{x: rng.Intn(w.width), y: rng.Intn(w.height)}
	}
	return w
}

// Move steps every user with probability moveProb by at most moveDist on
// each axis. Users stop at the border of the grid.
func (w *World) Move(rng *rand.Rand) {
	for i := range w.positions {
		if rng.Float64() >= w.moveProb {
			continue
		}
		p := &w.positions[i]
		p.x = clamp(p.x+rng.Intn(2*w.moveDist+1)-w.moveDist, 0, w.width-1)
		p.y = clamp(p.y+rng.Intn(2*w.moveDist+1)-w.moveDist, 0, w.height-1)
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Links returns, for every user, users within link distance in ascending order.
func (w *World) Links() [][]routing.UserID {
	cell := max(1, int(math.Ceil(w.linkDist)))
	buckets := map[point][]int{}
	for i, p := range w.positions {
		key := point{x: p.x / cell, y: p.y / cell}
		buckets[key] = append(buckets[key], i)
	}
	links := make([][]routing.UserID, len(w.positions))
	limit := w.linkDist * w.linkDist
	for i, p := range w.positions {
		key := point{x: p.x / cell, y: p.y / cell}
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range buckets[point{x: key.x + dx, y: key.y + dy}] {
					if i == j {
						continue
					}
					q := w.positions[j]
					ddx, ddy := float64(p.x-q.x), float64(p.y-q.y)
					if ddx*ddx+ddy*ddy <= limit {
						links[i] = append(links[i], routing.UserID(j))
					}
				}
			}
		}
		slices.Sort(links[i])
	}
	return links
}

// Position of user.
func (w *World) Position(user routing.UserID) (int, int) {
	p := w.positions[user]
	return p.x, p.y
}
