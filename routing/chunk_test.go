package routing

import (
	"math/rand"
	"slices"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc   string
		limit  int
		items  []int
		expect [][]int
	}{
		{"empty", 2, nil, nil},
		{"fits", 3, []int{1, 2, 3}, [][]int{{1, 2, 3}}},
		{"single per chunk", 1, []int{1, 2}, [][]int{{1}, {2}}},
		{"remainder", 2, []int{1, 2, 3}, [][]int{{1, 2}, {3}}},
		{"unbounded", 0, []int{1, 2, 3}, [][]int{{1, 2, 3}}},
		{"negative is unbounded", -1, []int{1, 2}, [][]int{{1, 2}}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expect, split(tc.limit, tc.items))
		})
	}
}

func TestSplitPreservesItems(t *testing.T) {
	t.Parallel()

	f := fuzz.New().NilChance(0).NumElements(0, 50)
	f.RandSource(rand.NewSource(7))
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		var items []int
		f.Fuzz(&items)
		limit := rng.Intn(10) + 1
		chunks := split(limit, items)
		var joined []int
		for _, chunk := range chunks {
			require.NotEmpty(t, chunk)
			require.LessOrEqual(t, len(chunk), limit)
			joined = append(joined, chunk...)
		}
		require.True(t, slices.Equal(items, joined))
		require.Len(t, chunks, (len(items)+limit-1)/limit)
	}
}
