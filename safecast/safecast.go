// Package safecast provides best-effort type coercion with explicit
// defaults, for field-mapping code that works with loosely typed catalog
// responses. Every function returns the supplied default instead of an
// error when the value cannot be coerced.
package safecast

import (
	"strings"

	"github.com/spf13/cast"
)

// Extended true-set beyond what strconv accepts. Catalog payloads and user
// config use these interchangeably.
var truthy = map[string]bool{
	"true": true,
	"yes":  true,
	"1":    true,
	"y":    true,
	"t":    true,
}

var falsy = map[string]bool{
	"false": true,
	"no":    true,
	"0":     true,
	"n":     true,
	"f":     true,
}

// Int coerces v to an int, falling back to def.
func Int(v any, def int) int {
	if v == nil {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// Int64 coerces v to an int64, falling back to def.
func Int64(v any, def int64) int64 {
	if v == nil {
		return def
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}
	return n
}

// Float64 coerces v to a float64, falling back to def.
func Float64(v any, def float64) float64 {
	if v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// String coerces v to a string, falling back to def.
func String(v any, def string) string {
	if v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Bool coerces v to a bool, falling back to def. String inputs accept
// yes/no and y/n spellings in addition to the usual true/false forms.
func Bool(v any, def bool) bool {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		switch lower := strings.ToLower(strings.TrimSpace(s)); {
		case truthy[lower]:
			return true
		case falsy[lower]:
			return false
		default:
			return def
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}
