package params

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// identifierPattern matches a namespaced identifier such as "minecraft:stone".
var identifierPattern = regexp.MustCompile(`^[a-z0-9_.\-]+:[a-z0-9_./\-]+$`)

// Validate checks a single value against its parameter definition. name is
// used only to build a descriptive error message.
func Validate(value any, def ParameterDef, name string) error {
	switch def.Kind {
	case KindInteger:
		n, ok := asFloat(value)
		if !ok || n != math.Trunc(n) {
			return fmt.Errorf("%w: %q expected integer, got %T(%v)", errz.ErrInvalidInputKind, name, value, value)
		}
		return checkRange(n, def, name)
	case KindFloating:
		n, ok := asFloat(value)
		if !ok || math.IsInf(n, 0) || math.IsNaN(n) {
			return fmt.Errorf("%w: %q expected a finite number, got %T(%v)", errz.ErrInvalidInputKind, name, value, value)
		}
		return checkRange(n, def, name)
	case KindText:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %q expected text, got %T", errz.ErrInvalidInputKind, name, value)
		}
		return checkOptions(s, def, name)
	case KindIdentifier:
		s, ok := value.(string)
		if !ok || !identifierPattern.MatchString(s) {
			return fmt.Errorf("%w: %q expected a namespaced identifier, got %v", errz.ErrInvalidInputKind, name, value)
		}
		return nil
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %q expected boolean, got %T", errz.ErrInvalidInputKind, name, value)
		}
		return nil
	case KindObject:
		if value == nil {
			return fmt.Errorf("%w: %q expected object, got null", errz.ErrInvalidInputKind, name)
		}
		if _, isSlice := value.([]any); isSlice {
			return fmt.Errorf("%w: %q expected object, got array", errz.ErrInvalidInputKind, name)
		}
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("%w: %q expected object, got %T", errz.ErrInvalidInputKind, name, value)
		}
		return nil
	case KindSequence:
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("%w: %q expected sequence, got %T", errz.ErrInvalidInputKind, name, value)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q declares unknown kind %q", errz.ErrInvalidParamKind, name, def.Kind)
	}
}

func checkRange(n float64, def ParameterDef, name string) error {
	if def.Min != nil && n < *def.Min {
		return fmt.Errorf("%w: %q value %v is below min %v", errz.ErrInputOutOfRange, name, n, *def.Min)
	}
	if def.Max != nil && n > *def.Max {
		return fmt.Errorf("%w: %q value %v is above max %v", errz.ErrInputOutOfRange, name, n, *def.Max)
	}
	return nil
}

func checkOptions(s string, def ParameterDef, name string) error {
	if len(def.Options) == 0 {
		return nil
	}
	for _, opt := range def.Options {
		if str, ok := opt.(string); ok && str == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %q value %q is not one of the declared options", errz.ErrInputNotAnOption, name, s)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// ValidateSchema checks that a schema's own declarations are well-formed,
// independent of any input values: monotone ranges, closed-set kinds, and
// array-typed options. It returns errors and, separately, non-fatal warnings.
func ValidateSchema(schema Schema) (errs []error, warnings []string) {
	for name, def := range schema {
		if !ValidKinds[def.Kind] {
			errs = append(errs, fmt.Errorf("%w: %q declares unknown kind %q", errz.ErrInvalidParamKind, name, def.Kind))
			continue
		}
		if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
			errs = append(errs, fmt.Errorf("%w: %q has min %v greater than max %v", errz.ErrInvalidRange, name, *def.Min, *def.Max))
		}
		if len(def.Options) > 100 {
			warnings = append(warnings, fmt.Sprintf("parameter %q declares %d options (>100)", name, len(def.Options)))
		}
	}
	return errs, warnings
}

// Visible reports whether def is visible given the current input map: true
// unless def.DependsOn names a sibling key whose current value differs (or
// is absent).
func Visible(def ParameterDef, inputs map[string]any) bool {
	if len(def.DependsOn) == 0 {
		return true
	}
	for key, expected := range def.DependsOn {
		actual, present := inputs[key]
		if !present || !deepEqual(actual, expected) {
			return false
		}
	}
	return true
}

func deepEqual(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

// Group partitions schema keys by def.Group (defaulting to "default"),
// listing keys present in inputs first in sorted order, with any
// schema-only keys appended afterward, also in sorted order.
func Group(schema Schema, inputs map[string]any) map[string][]string {
	out := map[string][]string{}
	seen := map[string]bool{}

	appendKey := func(key string, def ParameterDef) {
		group := def.Group
		if group == "" {
			group = "default"
		}
		out[group] = append(out[group], key)
		seen[key] = true
	}

	orderedInputKeys := make([]string, 0, len(inputs))
	for k := range inputs {
		orderedInputKeys = append(orderedInputKeys, k)
	}
	sort.Strings(orderedInputKeys)

	for _, k := range orderedInputKeys {
		if def, ok := schema[k]; ok && !seen[k] {
			appendKey(k, def)
		}
	}

	remaining := make([]string, 0, len(schema))
	for k := range schema {
		if !seen[k] {
			remaining = append(remaining, k)
		}
	}
	sort.Strings(remaining)
	for _, k := range remaining {
		appendKey(k, schema[k])
	}

	return out
}
