package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseBareKindString(t *testing.T) {
	def, err := Normalise("integer")
	require.NoError(t, err)
	assert.Equal(t, KindInteger, def.Kind)
}

func TestNormaliseObject(t *testing.T) {
	raw := map[string]any{
		"kind":    "integer",
		"default": 3.0,
		"min":     1.0,
		"max":     5.0,
	}
	def, err := Normalise(raw)
	require.NoError(t, err)
	assert.Equal(t, KindInteger, def.Kind)
	require.NotNil(t, def.Min)
	require.NotNil(t, def.Max)
	assert.Equal(t, 1.0, *def.Min)
	assert.Equal(t, 5.0, *def.Max)
}

func TestNormaliseRejectsInvertedRange(t *testing.T) {
	_, err := Normalise(map[string]any{"kind": "integer", "min": 10.0, "max": 1.0})
	require.Error(t, err)
}

func TestNormaliseIdempotent(t *testing.T) {
	def, err := Normalise("text")
	require.NoError(t, err)
	again, err := Normalise(def)
	require.NoError(t, err)
	assert.Equal(t, def, again)
}

func TestDefaultOfExplicit(t *testing.T) {
	def := ParameterDef{Kind: KindText, Default: "Hello"}
	assert.Equal(t, "Hello", DefaultOf(def))
}

func TestDefaultOfKindZero(t *testing.T) {
	cases := []struct {
		kind Kind
		want any
	}{
		{KindInteger, int64(0)},
		{KindFloating, float64(0)},
		{KindText, ""},
		{KindBoolean, false},
		{KindIdentifier, "minecraft:stone"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DefaultOf(ParameterDef{Kind: tc.kind}))
	}
}

func TestApplyDefaultsDoesNotOverridePresentZeroValues(t *testing.T) {
	schema := Schema{
		"count":   {Kind: KindInteger, Default: 1},
		"message": {Kind: KindText, Default: "Hello"},
		"enabled": {Kind: KindBoolean, Default: true},
	}
	inputs := map[string]any{"count": 0, "enabled": false}
	out := ApplyDefaults(inputs, schema)
	assert.Equal(t, 0, out["count"])
	assert.Equal(t, false, out["enabled"])
	assert.Equal(t, "Hello", out["message"])
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	schema := Schema{"count": {Kind: KindInteger, Default: 1}}
	first := ApplyDefaults(map[string]any{}, schema)
	second := ApplyDefaults(first, schema)
	assert.Equal(t, first, second)
}

func TestValidateIntegerRange(t *testing.T) {
	def := ParameterDef{Kind: KindInteger, Min: ptr(1.0), Max: ptr(5.0)}
	require.NoError(t, Validate(3, def, "count"))
	require.NoError(t, Validate(1, def, "count"))
	require.NoError(t, Validate(5, def, "count"))
	require.Error(t, Validate(6, def, "count"))
	require.Error(t, Validate(0, def, "count"))
	require.Error(t, Validate(2.5, def, "count"))
}

func TestValidateTextOptions(t *testing.T) {
	def := ParameterDef{Kind: KindText, Options: []any{"a", "b"}}
	require.NoError(t, Validate("a", def, "mode"))
	require.Error(t, Validate("c", def, "mode"))
}

func TestValidateBoolean(t *testing.T) {
	def := ParameterDef{Kind: KindBoolean}
	require.NoError(t, Validate(true, def, "flag"))
	require.Error(t, Validate("true", def, "flag"))
}

func TestValidateObjectRejectsArrayAndNull(t *testing.T) {
	def := ParameterDef{Kind: KindObject}
	require.Error(t, Validate(nil, def, "o"))
	require.Error(t, Validate([]any{1, 2}, def, "o"))
	require.NoError(t, Validate(map[string]any{"a": 1}, def, "o"))
}

func TestValidateIdentifier(t *testing.T) {
	def := ParameterDef{Kind: KindIdentifier}
	require.NoError(t, Validate("minecraft:stone", def, "block"))
	require.Error(t, Validate("stone", def, "block"))
}

func TestVisibleWithNoDependsOn(t *testing.T) {
	assert.True(t, Visible(ParameterDef{}, map[string]any{}))
}

func TestVisibleWithDependsOn(t *testing.T) {
	def := ParameterDef{DependsOn: map[string]any{"mode": "advanced"}}
	assert.False(t, Visible(def, map[string]any{}))
	assert.False(t, Visible(def, map[string]any{"mode": "basic"}))
	assert.True(t, Visible(def, map[string]any{"mode": "advanced"}))
}

func TestGroupPartitionsByGroup(t *testing.T) {
	schema := Schema{
		"a": {Group: "one"},
		"b": {Group: "two"},
		"c": {},
	}
	groups := Group(schema, map[string]any{})
	assert.ElementsMatch(t, []string{"a"}, groups["one"])
	assert.ElementsMatch(t, []string{"b"}, groups["two"])
	assert.ElementsMatch(t, []string{"c"}, groups["default"])
}

func TestValidateSchemaRejectsInvertedRangeAndWarnsOnHugeOptions(t *testing.T) {
	opts := make([]any, 150)
	for i := range opts {
		opts[i] = i
	}
	schema := Schema{
		"bad":      {Kind: KindInteger, Min: ptr(5.0), Max: ptr(1.0)},
		"huge":     {Kind: KindText, Options: opts},
		"unknown":  {Kind: Kind("vector3")},
	}
	errs, warnings := ValidateSchema(schema)
	assert.Len(t, errs, 2)
	assert.Len(t, warnings, 1)
}

func ptr(f float64) *float64 { return &f }
