package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Unit conversion factors applied to archive data.
const (
	JupiterMassToEarth   = 317.8
	JupiterRadiusToEarth = 11.2
	ParsecToLightYear    = 3.26156
)

// SafeFloat converts v to a float64 and multiplies it by multiplier.
// nil, empty strings, non-numeric values and NaN/Inf all yield 0, which the
// rest of the catalog treats as "unknown". It never panics.
func SafeFloat(v any, multiplier float64) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f * multiplier
}
