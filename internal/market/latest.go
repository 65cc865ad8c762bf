package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"runetick/pkg/osrswiki"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const latestKey = "latest"

// ItemPrice summarises the latest trade of an item.
type ItemPrice struct {
	LastPrice     int64 `json:"lastPrice"`
	HighPrice     int64 `json:"highPrice"`
	LowPrice      int64 `json:"lowPrice"`
	LastTradeTime int64 `json:"lastTradeTime"`
	IsDown        bool  `json:"isDown"` // the last trade was an instant-sell
}

// ItemSummary is an ItemPrice with the change of the last trade against the opposite side.
type ItemSummary struct {
	ItemPrice
	PercentChange null.Float `json:"percentChange"`
}

// Quote is a latest-price entry with missing sides filled and the high/low spread in percent.
type Quote struct {
	High          int64      `json:"high"`
	HighTime      int64      `json:"highTime"`
	Low           int64      `json:"low"`
	LowTime       int64      `json:"lowTime"`
	PercentChange null.Float `json:"percentChange"`
}

// latest returns the snapshot of every item's last trade, shared by all latest-price views.
func (s *Service) latest(ctx context.Context) (map[string]osrswiki.LatestPrice, error) {
	return cached(ctx, s, "latest", latestKey, s.opts.TTL.Latest, func(ctx context.Context) (map[string]osrswiki.LatestPrice, error) {
		start := time.Now()
		data, err := s.source.GetLatest(ctx)
		s.observe("latest", start, err)
		if err != nil {
			return nil, fmt.Errorf("fetch latest prices: %w", err)
		}
		return data, nil
	})
}

// LatestPrice summarises the last trade of a single item.
func (s *Service) LatestPrice(ctx context.Context, id int64) (*ItemSummary, error) {
	data, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := data[strconv.FormatInt(id, 10)]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	summary := Summarize(p)
	return &summary, nil
}

// MultipleItems returns the prices of the requested items that exist, keyed by item ID.
// A side that never traded takes the price of the other side.
func (s *Service) MultipleItems(ctx context.Context, ids []int64) (map[string]ItemPrice, error) {
	data, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]ItemPrice, len(ids))
	for _, id := range ids {
		key := strconv.FormatInt(id, 10)
		p, ok := data[key]
		if !ok {
			continue
		}
		q := fill(p)
		out[key] = priceOf(q.High, q.HighTime, q.Low, q.LowTime)
	}
	return out, nil
}

// LatestPrices returns every item's filled quote and feeds the change tracker.
func (s *Service) LatestPrices(ctx context.Context) (map[string]Quote, error) {
	data, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}

	quotes := quotesOf(data)
	s.changes.Record(quotes, s.now())
	return quotes, nil
}

// RefreshLatest bypasses the cache, stores a fresh snapshot and returns its quotes.
func (s *Service) RefreshLatest(ctx context.Context) (map[string]Quote, error) {
	start := time.Now()
	data, err := s.source.GetLatest(ctx)
	s.observe("latest", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch latest prices: %w", err)
	}
	if err := s.cache.Set(ctx, latestKey, data, s.opts.TTL.Latest); err != nil {
		s.log.Warn("cache set failed", zap.String("key", latestKey), zap.Error(err))
	}

	quotes := quotesOf(data)
	s.changes.Record(quotes, s.now())
	return quotes, nil
}

func quotesOf(data map[string]osrswiki.LatestPrice) map[string]Quote {
	quotes := make(map[string]Quote, len(data))
	for id, p := range data {
		q := fill(p)
		if q.High != 0 && q.Low != 0 {
			q.PercentChange = round2(float64(q.High-q.Low) / float64(q.Low) * 100)
		}
		quotes[id] = q
	}
	return quotes
}

// Changes returns the recently sampled last prices of each item.
func (s *Service) Changes() map[string][]Change {
	return s.changes.Snapshot()
}

// Summarize derives the last price of an item: the side that traded most recently.
// The percent change compares it with the other side and is null when that side is 0.
func Summarize(p osrswiki.LatestPrice) ItemSummary {
	high, low := deref(p.High), deref(p.Low)
	price := priceOf(high, deref(p.HighTime), low, deref(p.LowTime))

	prev := low
	if price.IsDown {
		prev = high
	}

	summary := ItemSummary{ItemPrice: price}
	if prev != 0 {
		summary.PercentChange = round2(float64(price.LastPrice-prev) / float64(prev) * 100)
	}
	return summary
}

func priceOf(high, highTime, low, lowTime int64) ItemPrice {
	isDown := lowTime > highTime
	last := high
	if isDown {
		last = low
	}
	return ItemPrice{
		LastPrice:     last,
		HighPrice:     high,
		LowPrice:      low,
		LastTradeTime: max(highTime, lowTime),
		IsDown:        isDown,
	}
}

// fill copies p into a Quote, using the traded side's price for a side that never traded.
func fill(p osrswiki.LatestPrice) Quote {
	q := Quote{
		High:     deref(p.High),
		HighTime: deref(p.HighTime),
		Low:      deref(p.Low),
		LowTime:  deref(p.LowTime),
	}
	if q.High == 0 {
		q.High = q.Low
	}
	if q.Low == 0 {
		q.Low = q.High
	}
	return q
}

func round2(v float64) null.Float {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return null.FloatFrom(f)
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
