package provider

import (
	"regexp"
	"strconv"
	"strings"
)

var percentRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)

// ParsePercent extracts the first percentage in text.
//
// Sites print both "85%" and "72,5 %"; a comma is read as the decimal
// separator. Values outside 0..100 are not probabilities and report
// ok=false, as does text without a percent sign.
func ParsePercent(text string) (float64, bool) {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || f < 0 || f > 100 {
		return 0, false
	}
	return f, true
}
