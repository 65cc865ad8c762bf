package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"runetick/pkg/osrsnews"
	"runetick/pkg/osrswiki"

	"go.uber.org/zap"
)

const (
	mappingsKey    = "mappings"
	volumesKey     = "volumes"
	regulationsKey = "regulations"
	newsKey        = "news"

	fireRuneID   = 554
	natureRuneID = 561
	// a high alchemy cast costs five fire runes and one nature rune
	fireRunesPerCast = 5
)

// Volume is the number of units traded on each side over the last day.
type Volume struct {
	HighPriceVolume int64 `json:"highPriceVolume"`
	LowPriceVolume  int64 `json:"lowPriceVolume"`
}

// AlchCost is the rune cost of one high alchemy cast at instant-sell prices.
type AlchCost struct {
	AlchCost        int64 `json:"alchCost"`
	FireRunePrice   int64 `json:"fireRunePrice"`
	NatureRunePrice int64 `json:"natureRunePrice"`
	Timestamp       int64 `json:"timestamp"`
}

// Mappings returns the metadata of every tradeable item.
func (s *Service) Mappings(ctx context.Context) ([]osrswiki.ItemMapping, error) {
	return cached(ctx, s, "mappings", mappingsKey, s.opts.TTL.Mappings, s.fetchMappings)
}

func (s *Service) fetchMappings(ctx context.Context) ([]osrswiki.ItemMapping, error) {
	start := time.Now()
	items, err := s.source.GetMapping(ctx)
	s.observe("mapping", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch mappings: %w", err)
	}
	return items, nil
}

// RefreshMappings replaces the cached item metadata.
func (s *Service) RefreshMappings(ctx context.Context) (int, error) {
	items, err := s.fetchMappings(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, mappingsKey, items, s.opts.TTL.Mappings); err != nil {
		return 0, fmt.Errorf("store mappings: %w", err)
	}
	return len(items), nil
}

// VolumeData returns the daily traded volume of every item. The result is
// cached until the next 00:00 UTC, when the upstream day rolls over.
func (s *Service) VolumeData(ctx context.Context) (map[string]Volume, error) {
	return cached(ctx, s, "volumes", volumesKey, untilNextUTCMidnight(s.now()), s.fetchVolumes)
}

func (s *Service) fetchVolumes(ctx context.Context) (map[string]Volume, error) {
	start := time.Now()
	resp, err := s.source.GetDailyVolumes(ctx)
	s.observe("24h", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch volumes: %w", err)
	}

	out := make(map[string]Volume, len(resp.Data))
	for id, p := range resp.Data {
		out[id] = Volume{
			HighPriceVolume: deref(p.HighPriceVolume),
			LowPriceVolume:  deref(p.LowPriceVolume),
		}
	}
	return out, nil
}

// RefreshVolumes replaces the cached volumes.
func (s *Service) RefreshVolumes(ctx context.Context) (int, error) {
	volumes, err := s.fetchVolumes(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, volumesKey, volumes, untilNextUTCMidnight(s.now())); err != nil {
		return 0, fmt.Errorf("store volumes: %w", err)
	}
	return len(volumes), nil
}

// Regulations returns the wiki-maintained list of items exempt from the Grand Exchange tax.
func (s *Service) Regulations(ctx context.Context) (json.RawMessage, error) {
	return cached(ctx, s, "regulations", regulationsKey, s.opts.TTL.Regulations, func(ctx context.Context) (json.RawMessage, error) {
		start := time.Now()
		raw, err := s.source.GetRaw(ctx, s.opts.RegulationsURL)
		s.observe("regulations", start, err)
		if err != nil {
			return nil, fmt.Errorf("fetch regulations: %w", err)
		}
		return raw, nil
	})
}

// AlchCost prices one high alchemy cast from the latest rune prices.
func (s *Service) AlchCost(ctx context.Context) (*AlchCost, error) {
	data, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}

	fire, ok := data[strconv.Itoa(fireRuneID)]
	if !ok {
		return nil, fmt.Errorf("%w: fire rune", ErrItemNotFound)
	}
	nature, ok := data[strconv.Itoa(natureRuneID)]
	if !ok {
		return nil, fmt.Errorf("%w: nature rune", ErrItemNotFound)
	}

	// instant-sell prices give a conservative estimate
	firePrice, naturePrice := deref(fire.Low), deref(nature.Low)
	return &AlchCost{
		AlchCost:        fireRunesPerCast*firePrice + naturePrice,
		FireRunePrice:   firePrice,
		NatureRunePrice: naturePrice,
		Timestamp:       s.now().UnixMilli(),
	}, nil
}

// News returns the latest OSRS news posts.
func (s *Service) News(ctx context.Context) (*osrsnews.Feed, error) {
	return cached(ctx, s, "news", newsKey, s.opts.TTL.News, func(ctx context.Context) (*osrsnews.Feed, error) {
		start := time.Now()
		feed, err := s.news.Fetch(ctx)
		s.observe("news", start, err)
		if err != nil {
			return nil, fmt.Errorf("fetch news: %w", err)
		}
		s.log.Debug("news refreshed", zap.Int("articles", len(feed.Articles)))
		return feed, nil
	})
}

// untilNextUTCMidnight returns the time left until the next 00:00 UTC.
func untilNextUTCMidnight(now time.Time) time.Duration {
	now = now.UTC()
	nextMidnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return nextMidnight.Sub(now)
}
