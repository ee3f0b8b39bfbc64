package engine

import (
	"fmt"
	"regexp"

	"github.com/relaygrid/scriptengine/internal/errz"
	"github.com/relaygrid/scriptengine/internal/jsengine"
	"github.com/relaygrid/scriptengine/internal/params"
)

// LoadedScript is the introspected form of a single source module: its io
// schema, its declared importScript dependency identifiers, and the
// compiled module it was parsed into. Immutable once produced.
type LoadedScript struct {
	ID      string
	IO      params.IOSchema
	IOValue jsengine.Value // the io export's own literal value, for re-exposure on callables
	Deps    []string
	Module  *jsengine.Module
}

// importCallPattern matches importScript("id") / importScript('id') call
// sites, double or single quotes, whitespace permissive.
var importCallPattern = regexp.MustCompile(`importScript\(\s*["']([^"']+)["']\s*\)`)

// introspect parses source, evaluates its top-level statements, and
// extracts the io schema, default export, and declared dependencies. Any
// failure surfaces wrapped in errz.ErrIntrospectionFailed or a shape
// error naming the specific missing piece.
func introspect(id, source string) (*LoadedScript, error) {
	prog, err := jsengine.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errz.ErrIntrospectionFailed, err)
	}

	env := jsengine.NewGlobalEnv(nil)
	mod, err := jsengine.RunModule(prog, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errz.ErrIntrospectionFailed, err)
	}

	ioVal, ok := mod.Named["io"]
	if !ok {
		return nil, errz.ErrMissingIOExport
	}
	ioMap, ok := jsengine.ToGo(ioVal).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: io export must be an object", errz.ErrInvalidIOSchema)
	}
	schema, err := buildIOSchema(ioMap)
	if err != nil {
		return nil, err
	}

	if !mod.HasDefault {
		return nil, errz.ErrMissingDefaultExport
	}

	return &LoadedScript{ID: id, IO: schema, IOValue: ioVal, Deps: extractDeps(source), Module: mod}, nil
}

func buildIOSchema(m map[string]any) (params.IOSchema, error) {
	inputsRaw, _ := m["inputs"].(map[string]any)
	outputsRaw, _ := m["outputs"].(map[string]any)

	inputs, err := params.NormaliseSchema(inputsRaw)
	if err != nil {
		return params.IOSchema{}, fmt.Errorf("%w: inputs: %s", errz.ErrInvalidIOSchema, err)
	}
	outputs, err := params.NormaliseSchema(outputsRaw)
	if err != nil {
		return params.IOSchema{}, fmt.Errorf("%w: outputs: %s", errz.ErrInvalidIOSchema, err)
	}
	return params.IOSchema{Inputs: inputs, Outputs: outputs}, nil
}

// extractDeps scans source for importScript call sites and returns the
// declared dependency identifiers, in first-occurrence order.
func extractDeps(source string) []string {
	matches := importCallPattern.FindAllStringSubmatch(source, -1)
	seen := map[string]bool{}
	var deps []string
	for _, m := range matches {
		id := m[1]
		if !seen[id] {
			seen[id] = true
			deps = append(deps, id)
		}
	}
	return deps
}
