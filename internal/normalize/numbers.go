package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toNumber mirrors loose numeric coercion: nil, "" and false are 0, true is 1,
// numeric strings parse after trimming, anything else (e.g. "4,5") fails.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, true
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint64:
		f = float64(t)
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case json.Number:
		x, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SafeNumber coerces v to a finite number, falling back to 0.
func SafeNumber(v any) float64 {
	f, ok := toNumber(v)
	if !ok {
		return 0
	}
	return f
}

// numericValue reports whether v is a number or a numeric string, excluding
// the empty and boolean cases toNumber folds to 0/1.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err != nil {
			return 0, false
		}
	}
	return toNumber(v)
}

func clampRating(f float64) float64 { return math.Max(0, math.Min(5, f)) }

// Round1 rounds half-up to one decimal place.
func Round1(f float64) float64 { return math.Floor(f*10+0.5) / 10 }

// Stars is the star-display value: rounded and clamped to 0..5.
func Stars(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(5, math.Floor(v+0.5))))
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err == nil && f != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	return true
}

// scalarString renders identifiers and passthrough values; composites become
// their JSON form.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
