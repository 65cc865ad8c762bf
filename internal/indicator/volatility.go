package indicator

import (
	"math"

	"github.com/guregu/null/v6"
)

const tradingDaysPerYear = 252

// Volatility returns the annualised sample standard deviation of the trailing
// period log returns ending at each price. The first value appears at index period.
func Volatility(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period < 2 || len(prices) < period+1 {
		return out
	}

	returns := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		returns[i] = math.Log(prices[i] / prices[i-1])
	}

	annualise := math.Sqrt(tradingDaysPerYear)
	for i := period; i < len(prices); i++ {
		window := returns[i-period+1 : i+1]

		var mean float64
		for _, r := range window {
			mean += r
		}
		mean /= float64(period)

		var variance float64
		for _, r := range window {
			variance += (r - mean) * (r - mean)
		}
		variance /= float64(period - 1)

		out[i] = null.FloatFrom(math.Sqrt(variance) * annualise)
	}
	return out
}
