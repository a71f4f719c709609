package kitchen

import "strings"

// irregularPlurals covers words the suffix rules below would fold wrongly.
var irregularPlurals = map[string]string{
	"cookies":   "cookie",
	"brownies":  "brownie",
	"veggies":   "veggie",
	"smoothies": "smoothie",
	"calories":  "calorie",
	"leaves":    "leaf",
	"loaves":    "loaf",
	"halves":    "half",
	"knives":    "knife",
	"molasses":  "molasses",
	"grits":     "grits",
	"bitters":   "bitters",
	"greens":    "greens",
	"schnapps":  "schnapps",
	"sweets":    "sweets",
}

// CleanName trims a display name and collapses inner whitespace, keeping case.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeName returns the matching key for an ingredient name: cleaned,
// lower-cased, with a plural folded on the last word only. Qualifiers are kept,
// so "green onions" becomes "green onion" and never "onion".
func NormalizeName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	if len(words) == 0 {
		return ""
	}
	last := len(words) - 1
	words[last] = singular(words[last])
	return strings.Join(words, " ")
}

func singular(word string) string {
	if s, ok := irregularPlurals[word]; ok {
		return s
	}
	switch {
	case len(word) <= 3:
		return word
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "oes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"), strings.HasSuffix(word, "xes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}
