package timeseries

// PriceBucket is one aggregated price sample for a time slot.
// A zero AvgHighPrice or AvgLowPrice means no trade of that side was observed.
type PriceBucket struct {
	Timestamp       int64 `json:"timestamp"`       // bucket start, unix seconds
	AvgHighPrice    int64 `json:"avgHighPrice"`    // average instant-buy price
	HighPriceVolume int64 `json:"highPriceVolume"` // units traded at the high side
	AvgLowPrice     int64 `json:"avgLowPrice"`     // average instant-sell price
	LowPriceVolume  int64 `json:"lowPriceVolume"`  // units traded at the low side
}

// DenseSeries is a fixed-length window of buckets ordered oldest to newest,
// with one bucket per interval step.
type DenseSeries []PriceBucket

// Timestamps returns the bucket timestamps in order.
func (s DenseSeries) Timestamps() []int64 {
	out := make([]int64, len(s))
	for i, b := range s {
		out[i] = b.Timestamp
	}
	return out
}
