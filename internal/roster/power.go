package roster

import (
	"math"
	"strconv"
	"strings"
)

var powerScales = map[string]float64{
	"thousand":    1e3,
	"million":     1e6,
	"billion":     1e9,
	"trillion":    1e12,
	"quadrillion": 1e15,
	"quintillion": 1e18,
	"sextillion":  1e21,
	"septillion":  1e24,
	"octillion":   1e27,
	"nonillion":   1e30,
	"decillion":   1e33,
}

// ParsePowerLevel turns the roster API's power strings into a Value.
//
//	"60.000.000"    -> 60000000   (dots as thousands separators)
//	"1,500"         -> 1500
//	"2.5 Billion"   -> 2.5e9
//	"unknown"       -> Missing
//
// Text that is not a number is kept as a category so numeric comparison
// reports a plain mismatch for it.
func ParsePowerLevel(raw string) Value {
	s := strings.TrimSpace(raw)
	if IsUnknown(s) {
		return Missing()
	}
	fields := strings.Fields(s)
	scale := 1.0
	switch len(fields) {
	case 1:
	case 2:
		f, ok := powerScales[strings.ToLower(fields[1])]
		if !ok {
			return Category(s)
		}
		scale = f
	default:
		return Category(s)
	}

	n, ok := parseGroupedNumber(fields[0], scale != 1)
	if !ok {
		return Category(s)
	}
	return Quantity(n * scale)
}

// parseGroupedNumber parses digits with "." or "," grouping. A single
// separator followed by exactly three digits is a thousands separator unless
// the number is followed by a scale word ("2.500 Million" stays 2.5).
func parseGroupedNumber(s string, scaled bool) (float64, bool) {
	if s == "" {
		return 0, false
	}
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		// "1.234,5" or "1,234.5": the last separator is the decimal point.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots == 1:
		if !scaled && len(s)-strings.Index(s, ".")-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	case commas == 1:
		if !scaled && len(s)-strings.Index(s, ",")-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}
