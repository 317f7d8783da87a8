package routing

import "github.com/samber/lo"

// split cuts items into consecutive groups of at most limit elements.
// A non-positive limit means groups are unbounded.
func split[T any](limit int, items []T) [][]T {
	if len(items) == 0 {
		return nil
	}
	if limit <= 0 || len(items) <= limit {
		return [][]T{items}
	}
	return lo.Chunk(items, limit)
}
