package indicator

import "github.com/guregu/null/v6"

// SMA returns the trailing simple moving average of prices.
// Entries before index period-1 are null.
func SMA(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}

	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = null.FloatFrom(sum / float64(period))
		}
	}
	return out
}

// EMA returns the exponential moving average of prices, seeded at index
// period-1 with the simple average of the first period prices.
func EMA(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}

	k := 2 / float64(period+1)

	var seed float64
	for _, p := range prices[:period] {
		seed += p
	}
	ema := seed / float64(period)
	out[period-1] = null.FloatFrom(ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*k + ema
		out[i] = null.FloatFrom(ema)
	}
	return out
}

// runningEMA is an EMA seeded with the first value instead of an SMA.
func runningEMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	k := 2 / float64(period+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
		out[i] = ema
	}
	return out
}
