package indicator

import "github.com/guregu/null/v6"

// RSI returns Wilder's relative strength index. The first value appears at
// index period, once period price changes are available. When the average
// loss is zero the relative strength is taken as 100.
func RSI(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period <= 0 || len(prices) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(prices[i] - prices[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = null.FloatFrom(rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(prices); i++ {
		gain, loss := split(prices[i] - prices[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = null.FloatFrom(rsiValue(avgGain, avgLoss))
	}
	return out
}

func split(change float64) (gain, loss float64) {
	if change >= 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	rs := 100.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100 - 100/(1+rs)
}
