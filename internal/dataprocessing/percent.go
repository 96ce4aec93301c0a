package dataprocessing

import (
	"strings"
)

// ToPercent normalizes a selection parity cell to the percentage scale.
// Text such as "17%" or "17,5" is taken as already scaled. Numeric values in
// [-1, 1] are fractions and get multiplied by 100 (0.17 gives 17); larger
// magnitudes pass through. Empty, unparseable or non-finite cells report
// false.
func ToPercent(c Cell) (float64, bool) {
	if c.Empty() {
		return 0, false
	}

	if c.Text {
		s := strings.TrimSpace(c.Value)
		s = strings.ReplaceAll(s, "%", "")
		s = strings.ReplaceAll(s, ",", ".")
		return parseFinite(s)
	}

	v, ok := c.Float()
	if !ok {
		return 0, false
	}
	if v >= -1 && v <= 1 {
		return v * 100, true
	}
	return v, true
}
