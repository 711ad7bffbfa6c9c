// Package config holds shared helpers for reading stage configuration
// maps. YAML and JSON decode numbers into different Go types, so every
// numeric access goes through a coercing accessor.
package config

import (
	"fmt"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/graph"
)

// Float reads a numeric key, coercing int kinds, with a fallback default.
func Float(cfg map[string]any, key string, def float64) float64 {
	v, ok := cfg[key]
	if !ok {
		return def
	}

	f, ok := toFloat(v)
	if !ok {
		return def
	}

	return f
}

// Int reads an integer key with a fallback default.
func Int(cfg map[string]any, key string, def int) int {
	f, ok := toFloat(cfg[key])
	if !ok {
		return def
	}

	return int(f)
}

// Axis reads an axis key spelled "x", "y" or "z" and returns the
// corresponding coordinate index. Missing or unknown spellings select x.
func Axis(cfg map[string]any, key string) int {
	switch cfg[key] {
	case "y":
		return 1
	case "z":
		return 2
	default:
		return 0
	}
}

// AxisProperty is the shared JSON schema fragment for axis keys.
func AxisProperty(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"enum":        []string{"x", "y", "z"},
		"description": description,
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// Keyframes builds a keyframe controller from the optional "keyframes"
// config list. Entries carry a frame number and a value; frame numbers are
// converted to ticks. Returns nil when the key is absent.
func Keyframes(g *graph.Graph, cfg map[string]any) (anim.Controller, error) {
	raw, ok := cfg["keyframes"]
	if !ok {
		return nil, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("keyframes: expected a list, got %T", raw)
	}

	interp := anim.InterpolationLinear
	if s, ok := cfg["interpolation"].(string); ok && s != "" {
		interp = anim.Interpolation(s)
	}

	keys := make([]anim.Key, 0, len(list))

	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("keyframes[%d]: expected a mapping, got %T", i, entry)
		}

		frame, ok := toFloat(m["frame"])
		if !ok {
			return nil, fmt.Errorf("keyframes[%d]: missing frame number", i)
		}

		value, ok := toFloat(m["value"])
		if !ok {
			return nil, fmt.Errorf("keyframes[%d]: missing value", i)
		}

		keys = append(keys, anim.Key{
			Time:  anim.FrameToTime(int(frame), anim.TicksPerFrame),
			Value: value,
		})
	}

	ctrl := anim.NewKeyframeController(g, interp)
	ctrl.SetKeys(keys)

	return ctrl, nil
}

// AddKeyframeProperties extends a stage's JSON schema with the shared
// keyframe animation keys.
func AddKeyframeProperties(schema map[string]any) {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return
	}

	props["keyframes"] = map[string]any{
		"type":        "array",
		"description": "Optional keyframes animating the stage's main parameter.",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"frame", "value"},
			"properties": map[string]any{
				"frame": map[string]any{"type": "integer"},
				"value": map[string]any{"type": "number"},
			},
		},
	}
	props["interpolation"] = map[string]any{
		"type": "string",
		"enum": []string{"linear", "step"},
	}
}
