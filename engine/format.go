package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatNumber renders v with exactly places decimals, rounding half away
// from zero. NaN renders as an empty cell.
func FormatNumber(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// FormatPercent renders a 0–100 share as "12.3%".
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return FormatNumber(v, 1) + "%"
}

// RoundTo2 rounds to 2 decimal places. NaN stays NaN.
func RoundTo2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
