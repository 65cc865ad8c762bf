package market

import (
	"context"
	"fmt"
	"time"

	"runetick/internal/indicator"
	"runetick/internal/timeseries"
	"runetick/pkg/osrswiki"
)

// PriceHistory is the gap-filled series of an item together with its latest trade.
type PriceHistory struct {
	ItemID   int64                  `json:"itemId"`
	Interval timeseries.Interval    `json:"interval"`
	Data     timeseries.DenseSeries `json:"data"`
	Latest   *osrswiki.LatestPrice  `json:"latest"`
}

// Indicators is the enriched series of an item.
type Indicators struct {
	ItemID   int64                     `json:"itemId"`
	Interval timeseries.Interval       `json:"interval"`
	Data     []indicator.EnrichedPoint `json:"data"`
}

// PriceHistory returns the dense price series of an item. Latest is nil when
// the item has no recent trade.
func (s *Service) PriceHistory(ctx context.Context, id int64, interval timeseries.Interval) (*PriceHistory, error) {
	meta, err := interval.Meta()
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("price:%d:%s", id, interval)
	return cached(ctx, s, "price", key, s.opts.TTL.Price, func(ctx context.Context) (*PriceHistory, error) {
		start := time.Now()
		points, err := s.source.GetTimeseries(ctx, id, meta.APIValue)
		s.observe("timeseries", start, err)
		if err != nil {
			return nil, fmt.Errorf("fetch history of %d: %w", id, err)
		}

		series, err := timeseries.Resample(toPriceBuckets(points), interval, s.opts.WindowSize, s.now())
		if err != nil {
			return nil, err
		}

		start = time.Now()
		latest, ok, err := s.source.GetLatestItem(ctx, id)
		s.observe("latest_item", start, err)
		if err != nil {
			return nil, fmt.Errorf("fetch latest of %d: %w", id, err)
		}

		history := &PriceHistory{ItemID: id, Interval: interval, Data: series}
		if ok {
			history.Latest = &latest
		}
		return history, nil
	})
}

// Indicators enriches the dense price series of an item with technical indicators.
func (s *Service) Indicators(ctx context.Context, id int64, interval timeseries.Interval) (*Indicators, error) {
	history, err := s.PriceHistory(ctx, id, interval)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	points := indicator.Compute(history.Data)
	s.metrics.IndicatorComputeDur.Observe(time.Since(start).Seconds())

	return &Indicators{ItemID: id, Interval: interval, Data: points}, nil
}

// toPriceBuckets converts API points to PriceBuckets.
// Null prices and volumes become 0, the "no trade" sentinel; rows without a timestamp are skipped.
func toPriceBuckets(points []osrswiki.TimeseriesPoint) []timeseries.PriceBucket {
	out := make([]timeseries.PriceBucket, 0, len(points))
	for _, p := range points {
		if p.Timestamp <= 0 {
			continue
		}
		out = append(out, timeseries.PriceBucket{
			Timestamp:       p.Timestamp,
			AvgHighPrice:    deref(p.AvgHighPrice),
			HighPriceVolume: deref(p.HighPriceVolume),
			AvgLowPrice:     deref(p.AvgLowPrice),
			LowPriceVolume:  deref(p.LowPriceVolume),
		})
	}
	return out
}
