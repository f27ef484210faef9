package weight

import (
	"regexp"
	"strconv"
	"strings"
)

// Indicator lines vary by vendor ("ST,GS,+  1234.5kg", "1234.5", ...); the
// weight is the first numeric token, optionally signed and fractional.
var weightRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// extractWeight pulls the first numeric token out of a raw indicator line.
// Invalid bytes are dropped rather than failing the parse.
func extractWeight(line string) (float64, bool) {
	line = strings.ToValidUTF8(line, "")
	match := weightRe.FindString(line)
	if match == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return w, true
}
