package kitchen

import (
	"math"
	"strconv"
	"strings"
)

var vulgarFractions = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

// ParseQuantity reads recipe-style quantities such as "2", "1.5", "1/2",
// "1 1/2" or "1½". ok is false for anything else, including ranges.
func ParseQuantity(raw string) (value float64, ok bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}

	total := 0.0
	for i, field := range fields {
		v, ok := parseQuantityField(field)
		if !ok {
			return 0, false
		}
		// only "<whole> <fraction>" is accepted as a two-part quantity
		if i == 1 && (v >= 1 || total != float64(int(total))) {
			return 0, false
		}
		total += v
	}
	if total < 0 {
		return 0, false
	}
	return total, true
}

func parseQuantityField(field string) (float64, bool) {
	if v, err := strconv.ParseFloat(field, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	if num, den, found := strings.Cut(field, "/"); found {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}

	runes := []rune(field)
	last := runes[len(runes)-1]
	frac, ok := vulgarFractions[last]
	if !ok {
		return 0, false
	}
	if len(runes) == 1 {
		return frac, true
	}
	whole, err := strconv.Atoi(string(runes[:len(runes)-1]))
	if err != nil {
		return 0, false
	}
	return float64(whole) + frac, true
}
