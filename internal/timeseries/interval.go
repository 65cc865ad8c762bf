package timeseries

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownInterval is returned when an interval outside the supported set is requested.
var ErrUnknownInterval = errors.New("unknown interval")

// Interval is the bucket width identifier used by the price API ("timestep").
type Interval string

// IntervalMeta holds the API value and bucket width for an Interval.
type IntervalMeta struct {
	APIValue string
	Width    time.Duration
}

const (
	Interval5Min  Interval = "5m"
	Interval1Hour Interval = "1h"
	Interval6Hour Interval = "6h"
	Interval1Day  Interval = "24h"
)

var validIntervals = map[Interval]IntervalMeta{
	Interval5Min:  {APIValue: "5m", Width: 5 * time.Minute},
	Interval1Hour: {APIValue: "1h", Width: time.Hour},
	Interval6Hour: {APIValue: "6h", Width: 6 * time.Hour},
	Interval1Day:  {APIValue: "24h", Width: 24 * time.Hour},
}

// IsValid checks if the Interval is one of the supported bucket widths.
func (i Interval) IsValid() bool {
	_, ok := validIntervals[i]
	return ok
}

// Meta returns the metadata of a supported interval.
func (i Interval) Meta() (IntervalMeta, error) {
	meta, ok := validIntervals[i]
	if !ok {
		return IntervalMeta{}, fmt.Errorf("%w: %q", ErrUnknownInterval, string(i))
	}
	return meta, nil
}

// WidthMillis returns the bucket width in milliseconds, or 0 for an unsupported interval.
func (i Interval) WidthMillis() int64 {
	return validIntervals[i].Width.Milliseconds()
}

// ParseInterval parses a query value such as "5m" into an Interval.
func ParseInterval(s string) (Interval, error) {
	interval := Interval(s)
	if !interval.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownInterval, s)
	}
	return interval, nil
}
