// Package params implements the parameter model: typed IO parameter
// definitions, default application, value validation, conditional
// visibility, and grouping.
package params

// Kind enumerates the closed set of parameter kinds a ParameterDef may declare.
type Kind string

const (
	KindInteger    Kind = "integer"
	KindFloating   Kind = "floating"
	KindText       Kind = "text"
	KindBoolean    Kind = "boolean"
	KindObject     Kind = "object"
	KindSequence   Kind = "sequence"
	KindIdentifier Kind = "identifier" // domain-tagged text, e.g. "namespace:name"
)

// ValidKinds is the closed set recognised by the validator and parameter model.
var ValidKinds = map[Kind]bool{
	KindInteger:    true,
	KindFloating:   true,
	KindText:       true,
	KindBoolean:    true,
	KindObject:     true,
	KindSequence:   true,
	KindIdentifier: true,
}

// ParameterDef is a typed input/output descriptor, the unit of the IOSchema.
type ParameterDef struct {
	Kind        Kind           `json:"kind"`
	Default     any            `json:"default,omitempty"`
	Min         *float64       `json:"min,omitempty"`
	Max         *float64       `json:"max,omitempty"`
	Step        *float64       `json:"step,omitempty"`
	Options     []any          `json:"options,omitempty"`
	ItemKind    Kind           `json:"itemKind,omitempty"`
	Description string         `json:"description,omitempty"`
	Group       string         `json:"group,omitempty"`
	DependsOn   map[string]any `json:"dependsOn,omitempty"`
}

// Schema is a key -> ParameterDef mapping, used for both inputs and outputs.
type Schema map[string]ParameterDef

// IOSchema is the two-sided typed description of a script's inputs and outputs.
type IOSchema struct {
	Inputs  Schema
	Outputs Schema
}
