package llm

import (
	"strconv"
	"strings"
)

// currencyMarks are stripped before numeric parsing. Models frequently echo
// the document's own formatting ("₹1,234.56", "$ 2,000").
var currencyMarks = strings.NewReplacer(
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	",", "",
	" ", "",
)

// AmountFromAny coerces a JSON value into a float64 amount. Strings may
// carry currency symbols and thousands separators. ok=false means the value
// is not interpretable as a number.
func AmountFromAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := currencyMarks.Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// NormalizeAmounts walks the parsed reply and rewrites every occurrence of
// the named keys, at any depth, to a plain float64. Keys whose value cannot
// be parsed become 0 so downstream arithmetic stays total; everything else
// is left untouched.
func NormalizeAmounts(fields map[string]any, arithmeticKeys []string) {
	if len(arithmeticKeys) == 0 {
		return
	}
	keys := make(map[string]struct{}, len(arithmeticKeys))
	for _, k := range arithmeticKeys {
		keys[k] = struct{}{}
	}
	normalizeNode(fields, keys)
}

func normalizeNode(node any, keys map[string]struct{}) {
	switch t := node.(type) {
	case map[string]any:
		for k, v := range t {
			if _, ok := keys[k]; ok {
				amount, _ := AmountFromAny(v)
				t[k] = amount
				continue
			}
			normalizeNode(v, keys)
		}
	case []any:
		for _, v := range t {
			normalizeNode(v, keys)
		}
	}
}
