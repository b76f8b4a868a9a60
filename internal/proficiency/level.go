// Package proficiency quantizes skill levels onto the 0-10 half-step grid and rescales
// values coming from legacy 0-5 sources.
package proficiency

import (
	"encoding/json"
	"math"
	"strings"
)

const (
	// MinLevel and MaxLevel bound every ProficiencyLevel.
	MinLevel = 0.0
	MaxLevel = 10.0
	// Step is the grid resolution.
	Step = 0.5

	// LegacyMax is the top of the legacy integer scale.
	LegacyMax = 5.0
)

// legacyTags maps the tag strings older clients persisted to grid values.
var legacyTags = map[string]float64{
	"advanced":     10,
	"intermediate": 6,
	"beginner":     2,
}

// Quantize clamps level to [0,10] and rounds it to the nearest 0.5.
// NaN is treated as 0.
func Quantize(level float64) float64 {
	if math.IsNaN(level) || level <= MinLevel {
		return MinLevel
	}
	if level >= MaxLevel {
		return MaxLevel
	}
	return math.Round(level/Step) * Step
}

// CoerceLevel turns an untyped persisted or decoded value into a level.
// Numbers are used directly, legacy tags are mapped, and anything else yields fallback.
// The result is always on the grid.
func CoerceLevel(raw any, fallback float64) float64 {
	value, ok := numeric(raw)
	if !ok {
		value = fallback
	}
	return Quantize(value)
}

// RescaleLegacy converts a value from a source known to emit the legacy 0-5 scale.
// Values above 5 are assumed to already be on the 0-10 scale and pass through.
func RescaleLegacy(raw float64) float64 {
	if raw <= LegacyMax {
		return Quantize(raw * 2)
	}
	return Quantize(raw)
}

// LegacyLevelWeight converts a level into a repeat count of at least 1.
func LegacyLevelWeight(level float64) int {
	return int(math.Round(Quantize(level)/Step)) + 1
}

// ToLegacyScale maps a grid level onto the backend's 0-5 integer scale.
func ToLegacyScale(level float64) int {
	return int(math.Round(Quantize(level) / 2))
}

func numeric(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		tag, ok := legacyTags[strings.ToLower(strings.TrimSpace(v))]
		return tag, ok
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
