// Package market serves item prices from the OSRS wiki API through a shared cache.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"runetick/config"
	"runetick/internal/cache"
	"runetick/internal/metrics"
	"runetick/pkg/osrsnews"
	"runetick/pkg/osrswiki"

	"go.uber.org/zap"
)

// ErrItemNotFound is returned when the upstream snapshot has no entry for an item.
var ErrItemNotFound = errors.New("item not found")

// PriceSource is the subset of the wiki client the service depends on.
type PriceSource interface {
	GetTimeseries(ctx context.Context, id int64, timestep string) ([]osrswiki.TimeseriesPoint, error)
	GetLatest(ctx context.Context) (map[string]osrswiki.LatestPrice, error)
	GetLatestItem(ctx context.Context, id int64) (osrswiki.LatestPrice, bool, error)
	GetMapping(ctx context.Context) ([]osrswiki.ItemMapping, error)
	GetDailyVolumes(ctx context.Context) (*osrswiki.BulkPriceResponse, error)
	GetRaw(ctx context.Context, rawURL string) (json.RawMessage, error)
}

// NewsSource provides the OSRS news feed.
type NewsSource interface {
	Fetch(ctx context.Context) (*osrsnews.Feed, error)
}

type Options struct {
	TTL            config.TTLConfig
	RegulationsURL string
	WindowSize     int              // buckets per price history, 0 for the default
	Now            func() time.Time // defaults to time.Now
}

type Service struct {
	source  PriceSource
	news    NewsSource
	cache   cache.Cache
	changes *ChangeTracker
	metrics *metrics.Metrics
	log     *zap.Logger
	opts    Options
}

func NewService(source PriceSource, news NewsSource, c cache.Cache, m *metrics.Metrics, log *zap.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		source:  source,
		news:    news,
		cache:   c,
		changes: NewChangeTracker(),
		metrics: m,
		log:     log.Named("market"),
		opts:    opts,
	}
}

// cached returns the value under key, calling fetch and storing its result on a miss.
// Cache failures are logged and treated as misses so a broken cache never fails a request.
func cached[T any](ctx context.Context, s *Service, name, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var v T
	ok, err := s.cache.Get(ctx, key, &v)
	switch {
	case err != nil:
		s.metrics.CacheLookups.WithLabelValues(name, "error").Inc()
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	case ok:
		s.metrics.CacheLookups.WithLabelValues(name, "hit").Inc()
		return v, nil
	default:
		s.metrics.CacheLookups.WithLabelValues(name, "miss").Inc()
	}

	v, err = fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := s.cache.Set(ctx, key, v, ttl); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// observe records the outcome and latency of an upstream call.
func (s *Service) observe(endpoint string, start time.Time, err error) {
	s.metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.Outcome(err)).Inc()
	s.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Warn("upstream call failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

func (s *Service) now() time.Time {
	return s.opts.Now()
}
