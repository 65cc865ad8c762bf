package indicator

import (
	"math"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// round converts an unrounded value into its display form. Non-finite values become null.
func round(v null.Float, places int32) null.Float {
	if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		return null.Float{}
	}
	f, _ := decimal.NewFromFloat(v.Float64).Round(places).Float64()
	return null.FloatFrom(f)
}
