// Package indicator derives technical indicators from a gap-filled price series.
package indicator

import (
	"runetick/internal/timeseries"

	"github.com/guregu/null/v6"
)

const (
	rsiPeriod        = 14
	volatilityPeriod = 14
	smaShortPeriod   = 14
	smaLongPeriod    = 50
	emaFastPeriod    = 12
	emaSlowPeriod    = 26
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// EnrichedPoint is a bucket of a DenseSeries together with its derived price and indicators.
// Derived fields are null when there is not enough history to compute them.
type EnrichedPoint struct {
	timeseries.PriceBucket

	Price      null.Int   `json:"price"`
	RSI        null.Float `json:"rsi"`
	Volatility null.Float `json:"volatility"`
	SMA14      null.Float `json:"sma14"`
	SMA50      null.Float `json:"sma50"`
	EMA12      null.Float `json:"ema12"`
	EMA26      null.Float `json:"ema26"`
	MACD       null.Float `json:"macd"`
	Signal     null.Float `json:"signal"`
	Histogram  null.Float `json:"histogram"`
}

// PriceOf returns the single representative price of a bucket: the low price,
// or the high price when no low price exists. Both missing yields null.
func PriceOf(b timeseries.PriceBucket) null.Int {
	switch {
	case b.AvgLowPrice != 0:
		return null.IntFrom(b.AvgLowPrice)
	case b.AvgHighPrice != 0:
		return null.IntFrom(b.AvgHighPrice)
	default:
		return null.Int{}
	}
}

// Compute enriches every bucket of series with its indicators.
//
// Indicators are evaluated over the buckets that have a price, in order, and
// written back to those buckets; buckets without a price keep null
// indicators. Compute never fails: an indicator whose window is not yet
// filled is left null. The input is not modified.
func Compute(series timeseries.DenseSeries) []EnrichedPoint {
	points := make([]EnrichedPoint, len(series))

	var (
		prices    []float64
		positions []int
	)
	for i, b := range series {
		points[i].PriceBucket = b
		points[i].Price = PriceOf(b)
		if points[i].Price.Valid {
			prices = append(prices, float64(points[i].Price.Int64))
			positions = append(positions, i)
		}
	}
	if len(prices) == 0 {
		return points
	}

	rsi := RSI(prices, rsiPeriod)
	vol := Volatility(prices, volatilityPeriod)
	sma14 := SMA(prices, smaShortPeriod)
	sma50 := SMA(prices, smaLongPeriod)
	ema12 := EMA(prices, emaFastPeriod)
	ema26 := EMA(prices, emaSlowPeriod)
	macd := MACD(prices, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)

	for j, pos := range positions {
		p := &points[pos]
		p.RSI = round(rsi[j], 2)
		p.Volatility = round(vol[j], 4)
		p.SMA14 = round(sma14[j], 2)
		p.SMA50 = round(sma50[j], 2)
		p.EMA12 = round(ema12[j], 2)
		p.EMA26 = round(ema26[j], 2)
		p.MACD = round(macd.MACD[j], 4)
		p.Signal = round(macd.Signal[j], 4)
		p.Histogram = round(macd.Histogram[j], 4)
	}

	return points
}
