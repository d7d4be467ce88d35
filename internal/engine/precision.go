package engine

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PricePrecision derives the number of decimal places from a tick size string:
// "1.00000000" gives 0, "0.00100000" gives 3.
func PricePrecision(tickSize string) int {
	if v, err := strconv.ParseFloat(tickSize, 64); err == nil && v == 1 {
		return 0
	}
	return strings.IndexByte(tickSize, '1') - 1
}

// FloorToPrecision rounds v towards negative infinity at the given number of decimal places.
func FloorToPrecision(v float64, precision int) float64 {
	f, _ := decimal.NewFromFloat(v).RoundFloor(int32(precision)).Float64()
	return f
}
