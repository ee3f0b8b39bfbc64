package params

import (
	"fmt"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// Normalise converts a raw parameter declaration - either a bare kind string
// (legacy shorthand) or a full object - into a ParameterDef. It is idempotent:
// Normalise(Normalise(x)) behaves identically to Normalise(x).
func Normalise(raw any) (ParameterDef, error) {
	switch v := raw.(type) {
	case ParameterDef:
		return v, nil
	case string:
		return ParameterDef{Kind: Kind(v)}, nil
	case map[string]any:
		return normaliseObject(v)
	default:
		return ParameterDef{}, fmt.Errorf("%w: parameter spec must be a string or object, got %T", errz.ErrInvalidParamKind, raw)
	}
}

func normaliseObject(m map[string]any) (ParameterDef, error) {
	def := ParameterDef{}

	kindRaw, ok := m["kind"]
	if !ok {
		return def, fmt.Errorf("%w: parameter spec missing kind", errz.ErrInvalidParamKind)
	}
	kindStr, ok := kindRaw.(string)
	if !ok {
		return def, fmt.Errorf("%w: kind must be a string", errz.ErrInvalidParamKind)
	}
	def.Kind = Kind(kindStr)

	if d, ok := m["default"]; ok {
		def.Default = d
	}
	if v, ok := numeric(m["min"]); ok {
		def.Min = &v
	}
	if v, ok := numeric(m["max"]); ok {
		def.Max = &v
	}
	if v, ok := numeric(m["step"]); ok {
		def.Step = &v
	}
	if opts, ok := m["options"].([]any); ok {
		def.Options = opts
	}
	if ik, ok := m["itemKind"].(string); ok {
		def.ItemKind = Kind(ik)
	}
	if desc, ok := m["description"].(string); ok {
		def.Description = desc
	}
	if grp, ok := m["group"].(string); ok {
		def.Group = grp
	}
	if deps, ok := m["dependsOn"].(map[string]any); ok {
		def.DependsOn = deps
	}

	if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
		return def, fmt.Errorf("%w: min %v is greater than max %v", errz.ErrInvalidRange, *def.Min, *def.Max)
	}

	return def, nil
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// NormaliseSchema normalises every entry of a raw map[string]any into a Schema.
func NormaliseSchema(raw map[string]any) (Schema, error) {
	out := make(Schema, len(raw))
	for key, v := range raw {
		def, err := Normalise(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key, err)
		}
		out[key] = def
	}
	return out, nil
}
