package indicator

import "github.com/guregu/null/v6"

// MACDResult holds the three MACD lines aligned with the input prices.
type MACDResult struct {
	MACD      []null.Float
	Signal    []null.Float
	Histogram []null.Float
}

// MACD computes the moving average convergence/divergence lines.
//
// Known quirk: the fast, slow and signal averages here are running EMAs
// seeded with the first value, unlike EMA which seeds with an SMA.
// MACD(prices, 12, 26, 9) therefore does not equal EMA12 - EMA26.
//
// The signal line is null at index 0, where the histogram equals the MACD value.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	n := len(prices)
	res := MACDResult{
		MACD:      make([]null.Float, n),
		Signal:    make([]null.Float, n),
		Histogram: make([]null.Float, n),
	}
	if n == 0 {
		return res
	}

	fastEMA := runningEMA(prices, fast)
	slowEMA := runningEMA(prices, slow)

	line := make([]float64, n)
	for i := range prices {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalEMA := runningEMA(line, signal)

	for i := range line {
		res.MACD[i] = null.FloatFrom(line[i])
		if i == 0 {
			res.Histogram[i] = null.FloatFrom(line[i])
			continue
		}
		res.Signal[i] = null.FloatFrom(signalEMA[i])
		res.Histogram[i] = null.FloatFrom(line[i] - signalEMA[i])
	}
	return res
}
