package timeseries

import (
	"fmt"
	"time"
)

// DefaultWindowSize is the number of buckets produced when no window size is given.
const DefaultWindowSize = 365

// Resample converts a sparse set of buckets into a DenseSeries of windowSize
// consecutive buckets ending at the bucket containing now.
//
// Slots absent from sparse are emitted as all-zero buckets. Afterwards every
// zero AvgHighPrice and AvgLowPrice is filled independently from the nearest
// non-zero values before and after it: the floored midpoint when both exist,
// the single neighbour when only one exists, 0 otherwise. Neighbours are read
// from the unfilled values, so a filled slot never feeds another fill.
//
// When sparse holds several buckets with the same timestamp the last one wins.
// A windowSize <= 0 selects DefaultWindowSize.
func Resample(sparse []PriceBucket, interval Interval, windowSize int, now time.Time) (DenseSeries, error) {
	if _, err := interval.Meta(); err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	lookup := make(map[int64]PriceBucket, len(sparse))
	for _, b := range sparse {
		lookup[b.Timestamp] = b
	}

	width := interval.WidthMillis()
	nowMs := now.UnixMilli()

	series := make(DenseSeries, windowSize)
	for k := range series {
		steps := int64(windowSize - 1 - k)
		ts := floorDiv(nowMs-steps*width, width) * width / 1000

		if b, ok := lookup[ts]; ok {
			b.Timestamp = ts
			series[k] = b
		} else {
			series[k] = PriceBucket{Timestamp: ts}
		}
	}

	highs := make([]int64, windowSize)
	lows := make([]int64, windowSize)
	for i, b := range series {
		highs[i] = b.AvgHighPrice
		lows[i] = b.AvgLowPrice
	}

	highs = fillGaps(highs)
	lows = fillGaps(lows)
	for i := range series {
		series[i].AvgHighPrice = highs[i]
		series[i].AvgLowPrice = lows[i]
	}

	return series, nil
}

// fillGaps returns a copy of values where each zero is replaced using the
// nearest non-zero entries of the input on either side.
func fillGaps(values []int64) []int64 {
	n := len(values)
	out := make([]int64, n)
	copy(out, values)

	// prev[i] / next[i] hold the index of the nearest non-zero value strictly
	// before / after i, or -1.
	prev := make([]int, n)
	next := make([]int, n)

	last := -1
	for i := 0; i < n; i++ {
		prev[i] = last
		if values[i] != 0 {
			last = i
		}
	}
	last = -1
	for i := n - 1; i >= 0; i-- {
		next[i] = last
		if values[i] != 0 {
			last = i
		}
	}

	for i := 0; i < n; i++ {
		if values[i] != 0 {
			continue
		}
		p, q := prev[i], next[i]
		switch {
		case p >= 0 && q >= 0:
			out[i] = floorDiv(values[p]+values[q], 2)
		case p >= 0:
			out[i] = values[p]
		case q >= 0:
			out[i] = values[q]
		}
	}
	return out
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
