package pipeline

import (
	"math"
	"regexp"
	"strconv"
)

var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseDecimal accepts plain decimal or exponent notation only. Hex floats,
// underscores and the Inf/NaN spellings strconv also understands are
// rejected, as are values that overflow to infinity.
func parseDecimal(s string) (float64, bool) {
	if !decimalRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
