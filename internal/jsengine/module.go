package jsengine

import "fmt"

// Module is the result of running a program's top-level statements: every
// binding that ended up in the module-level environment, split out into
// named exports and the default export (if any).
type Module struct {
	Env     *Env
	Named   map[string]Value
	Default Value
	HasDefault bool
}

// Compile parses source text into a Program without executing it. Parse
// errors surface here so a caller can distinguish "does not parse" from
// "threw while running".
func Compile(src string) (*Program, error) {
	return Parse(src)
}

// NewGlobalEnv builds the root environment every module executes against.
// globals holds capability bindings (e.g. "context") the host injects.
func NewGlobalEnv(globals map[string]Value) *Env {
	env := NewEnv(nil)
	env.Define("Math", NewMathObject(), true)
	for name, v := range globals {
		env.Define(name, v, true)
	}
	return env
}

// RunModule executes a program's top-level statements against env and
// collects its exports. A bare `throw` at module scope surfaces as an error
// of type *ThrownError.
func RunModule(prog *Program, env *Env) (*Module, error) {
	for _, stmt := range prog.Body {
		if _, err := exec(stmt, env); err != nil {
			return nil, err
		}
	}
	mod := &Module{Env: env, Named: map[string]Value{}}
	for _, stmt := range prog.Body {
		switch n := stmt.(type) {
		case *ExportNamedDecl:
			v, ok := env.Get(n.Decl.Name)
			if ok {
				mod.Named[n.Decl.Name] = v
			}
		case *ExportDefaultDecl:
			v, ok := env.Get("default")
			if ok {
				mod.Default = v
				mod.HasDefault = true
			}
		}
	}
	return mod, nil
}

// CallExport invokes a named or default export as a function. name == ""
// means the default export.
func (m *Module) CallExport(name string, args []Value) (Value, error) {
	var fn Value
	if name == "" {
		if !m.HasDefault {
			return nil, fmt.Errorf("jsengine: module has no default export")
		}
		fn = m.Default
	} else {
		v, ok := m.Named[name]
		if !ok {
			return nil, fmt.Errorf("jsengine: module has no export %q", name)
		}
		fn = v
	}
	return CallValue(fn, args)
}

// EvaluateLiteral parses src as a single expression and evaluates it
// against an empty environment, then lowers the result to plain Go data.
// It is used to read object/array literal text (e.g. an io schema) without
// running any script logic: the expression may only reference literals,
// other literals it builds, and the Math global.
func EvaluateLiteral(src string) (any, error) {
	node, err := ParseExpression(src)
	if err != nil {
		return nil, err
	}
	env := NewGlobalEnv(nil)
	v, err := evalExpr(node, env)
	if err != nil {
		return nil, err
	}
	return ToGo(v), nil
}

// Run is a convenience entry point: parse, execute top-level statements,
// then call the default export with args. The engine package itself goes
// through Compile, RunModule and CallExport instead.
func Run(src string, globals map[string]Value, args []Value) (Value, error) {
	prog, err := Compile(src)
	if err != nil {
		return nil, err
	}
	env := NewGlobalEnv(globals)
	mod, err := RunModule(prog, env)
	if err != nil {
		return nil, err
	}
	return mod.CallExport("", args)
}
