package loan

import (
	"math"
	"strconv"
)

// FormatAmount rounds a monetary value to the nearest whole soum and
// groups digits with spaces: 12345678 -> "12 345 678".
func FormatAmount(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + " " + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
