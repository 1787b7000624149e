package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// number reads a numeric property. Numbers stored as strings are parsed.
// It reports false when the field is unset, absent or null.
func number(props geojson.Properties, field string) (float64, bool, error) {
	if field == "" {
		return 0, false, nil
	}
	v, ok := props[field]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case int:
		return float64(n), true, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false, fmt.Errorf("property %s: %q is not a number", field, n)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("property %s: unexpected %T value", field, v)
	}
}

// text renders a scalar property as a string. Integral numbers print
// without a decimal part.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
