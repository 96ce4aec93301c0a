package exporter

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// NotAvailable marks a missing number or an empty table.
const NotAvailable = "N/A"

// FormatNumber renders a GMS value with thousands separators. Whole numbers
// have no decimals ("1,234"), anything else is rounded to two ("1,234.57").
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<62 {
		return humanize.Comma(int64(v))
	}
	return humanize.FormatFloat("#,###.##", v)
}

// formatFloat formats a value for CSV output without grouping so that
// spreadsheets parse it back as a number.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
