package routing

import (
	"fmt"
	"math"
)

// Reducer compresses the hop lengths or replication counts of batch members
// into the single value recorded on the batch.
//
// The names count the consumed part of a budget, hence ReduceMax folds to the
// smallest value and ReduceMin to the largest.
type Reducer string

const (
	ReduceMin  Reducer = "min"
	ReduceMean Reducer = "mean"
	ReduceMax  Reducer = "max"
)

func (r Reducer) Validate() error {
	switch r {
	case ReduceMin, ReduceMean, ReduceMax:
		return nil
	default:
		return fmt.Errorf("unknown reducer %q", string(r))
	}
}

// Fold applies the reducer to values. Callers never pass an empty slice.
func (r Reducer) Fold(values []float64) float64 {
	switch r {
	case ReduceMax:
		rst := math.Inf(1)
		for _, v := range values {
			rst = math.Min(rst, v)
		}
		return rst
	case ReduceMin:
		rst := math.Inf(-1)
		for _, v := range values {
			rst = math.Max(rst, v)
		}
		return rst
	case ReduceMean:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	default:
		panic("unknown reducer " + string(r))
	}
}
