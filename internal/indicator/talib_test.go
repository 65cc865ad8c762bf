package indicator

import (
	"testing"

	talib "github.com/markcheno/go-talib"
)

func wavePrices(n int) []float64 {
	out := make([]float64, n)
	for i, p := range wave(n) {
		out[i] = float64(p)
	}
	return out
}

// go test -v --run TestSMAMatchesTalib
func TestSMAMatchesTalib(t *testing.T) {
	prices := wavePrices(120)
	for _, period := range []int{14, 50} {
		got := SMA(prices, period)
		want := talib.Sma(prices, period)
		for i := period - 1; i < len(prices); i++ {
			assertClose(t, "sma", got[i].Float64, want[i], 1e-6)
		}
	}
}

// go test -v --run TestEMAMatchesTalib
func TestEMAMatchesTalib(t *testing.T) {
	prices := wavePrices(120)
	for _, period := range []int{12, 26} {
		got := EMA(prices, period)
		want := talib.Ema(prices, period)
		for i := period - 1; i < len(prices); i++ {
			assertClose(t, "ema", got[i].Float64, want[i], 1e-6)
		}
	}
}

// go test -v --run TestRSIMatchesTalib
func TestRSIMatchesTalib(t *testing.T) {
	prices := wavePrices(120)
	got := RSI(prices, 14)
	want := talib.Rsi(prices, 14)
	for i := 14; i < len(prices); i++ {
		if !got[i].Valid {
			t.Fatalf("rsi missing at %d", i)
		}
		assertClose(t, "rsi", got[i].Float64, want[i], 1e-6)
	}
	for i := 0; i < 14; i++ {
		if got[i].Valid {
			t.Errorf("rsi should be null at %d", i)
		}
	}
}
