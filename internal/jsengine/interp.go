package jsengine

import "fmt"

type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

type execResult struct {
	kind  ctrlKind
	value Value
}

// ThrownError wraps a script-level throw so Go callers can recover the
// thrown value rather than just its string form.
type ThrownError struct{ Value Value }

func (e *ThrownError) Error() string {
	return fmt.Sprintf("uncaught exception: %s", FormatValue(e.Value))
}

// CallValue invokes a Function or NativeFunction uniformly.
func CallValue(callee Value, args []Value) (Value, error) {
	switch fn := callee.(type) {
	case *Function:
		return CallFunction(fn, args)
	case *NativeFunction:
		return fn.Fn(args)
	default:
		return nil, fmt.Errorf("jsengine: value of type %s is not callable", TypeOf(callee))
	}
}

// CallFunction runs a user-defined function body to completion and returns
// its result, unwrapping an implicit `return` or defaulting to undefined.
func CallFunction(fn *Function, args []Value) (Value, error) {
	env := NewEnv(fn.Closure)
	for i, p := range fn.Params {
		if i < len(args) {
			env.Define(p, args[i], false)
		} else {
			env.Define(p, UndefinedValue, false)
		}
	}
	res, err := execBlock(fn.Body, env)
	if err != nil {
		return nil, err
	}
	if res.kind == ctrlReturn {
		return res.value, nil
	}
	return UndefinedValue, nil
}

func execBlock(b *BlockStmt, env *Env) (execResult, error) {
	for _, stmt := range b.Body {
		res, err := exec(stmt, env)
		if err != nil {
			return execResult{}, err
		}
		if res.kind != ctrlNone {
			return res, nil
		}
	}
	return execResult{}, nil
}

func exec(node Node, env *Env) (execResult, error) {
	switch n := node.(type) {
	case *VarDecl:
		var v Value = UndefinedValue
		if n.Init != nil {
			val, err := evalExpr(n.Init, env)
			if err != nil {
				return execResult{}, err
			}
			v = val
		}
		env.Define(n.Name, v, n.Kind == "const")
		return execResult{}, nil

	case *ExportNamedDecl:
		return exec(n.Decl, env)

	case *ExportDefaultDecl:
		v, err := evalExpr(n.Expr, env)
		if err != nil {
			return execResult{}, err
		}
		env.Define("default", v, true)
		return execResult{}, nil

	case *ExprStmt:
		if fnLit, ok := n.Expr.(*FunctionLit); ok && fnLit.Name != "" {
			fn := &Function{Name: fnLit.Name, Params: fnLit.Params, Body: fnLit.Body, Closure: env, IsAsync: fnLit.IsAsync}
			env.Define(fnLit.Name, fn, false)
			return execResult{}, nil
		}
		_, err := evalExpr(n.Expr, env)
		return execResult{}, err

	case *BlockStmt:
		return execBlock(n, NewEnv(env))

	case *IfStmt:
		cond, err := evalExpr(n.Cond, env)
		if err != nil {
			return execResult{}, err
		}
		if IsTruthy(cond) {
			return exec(n.Then, env)
		}
		if n.Else != nil {
			return exec(n.Else, env)
		}
		return execResult{}, nil

	case *WhileStmt:
		for {
			cond, err := evalExpr(n.Cond, env)
			if err != nil {
				return execResult{}, err
			}
			if !IsTruthy(cond) {
				return execResult{}, nil
			}
			res, err := exec(n.Body, NewEnv(env))
			if err != nil {
				return execResult{}, err
			}
			if res.kind == ctrlBreak {
				return execResult{}, nil
			}
			if res.kind == ctrlReturn {
				return res, nil
			}
		}

	case *ForStmt:
		loopEnv := NewEnv(env)
		if n.Init != nil {
			if _, err := exec(n.Init, loopEnv); err != nil {
				return execResult{}, err
			}
		}
		for {
			if n.Cond != nil {
				cond, err := evalExpr(n.Cond, loopEnv)
				if err != nil {
					return execResult{}, err
				}
				if !IsTruthy(cond) {
					break
				}
			}
			res, err := exec(n.Body, NewEnv(loopEnv))
			if err != nil {
				return execResult{}, err
			}
			if res.kind == ctrlBreak {
				break
			}
			if res.kind == ctrlReturn {
				return res, nil
			}
			if n.Post != nil {
				if _, err := evalExpr(n.Post, loopEnv); err != nil {
					return execResult{}, err
				}
			}
		}
		return execResult{}, nil

	case *ForOfStmt:
		iterable, err := evalExpr(n.Iterable, env)
		if err != nil {
			return execResult{}, err
		}
		items, err := iterate(iterable)
		if err != nil {
			return execResult{}, err
		}
		for _, item := range items {
			iterEnv := NewEnv(env)
			iterEnv.Define(n.VarName, item, n.Kind == "const")
			res, err := exec(n.Body, iterEnv)
			if err != nil {
				return execResult{}, err
			}
			if res.kind == ctrlBreak {
				break
			}
			if res.kind == ctrlReturn {
				return res, nil
			}
		}
		return execResult{}, nil

	case *ReturnStmt:
		var v Value = UndefinedValue
		if n.Value != nil {
			val, err := evalExpr(n.Value, env)
			if err != nil {
				return execResult{}, err
			}
			v = val
		}
		return execResult{kind: ctrlReturn, value: v}, nil

	case *BreakStmt:
		return execResult{kind: ctrlBreak}, nil

	case *ContinueStmt:
		return execResult{kind: ctrlContinue}, nil

	case *ThrowStmt:
		v, err := evalExpr(n.Value, env)
		if err != nil {
			return execResult{}, err
		}
		return execResult{}, &ThrownError{Value: v}

	case *TryStmt:
		res, err := execBlock(n.Block, NewEnv(env))
		if err != nil {
			if thrown, ok := err.(*ThrownError); ok && n.CatchBlock != nil {
				catchEnv := NewEnv(env)
				if n.CatchParam != "" {
					catchEnv.Define(n.CatchParam, thrown.Value, false)
				}
				res, err = execBlock(n.CatchBlock, catchEnv)
			}
		}
		if n.FinallyBlock != nil {
			fres, ferr := execBlock(n.FinallyBlock, NewEnv(env))
			if ferr != nil {
				return execResult{}, ferr
			}
			if fres.kind != ctrlNone {
				return fres, nil
			}
		}
		return res, err

	default:
		// expression used as a statement position (e.g. bare function literal)
		_, err := evalExpr(node, env)
		return execResult{}, err
	}
}

func iterate(v Value) ([]Value, error) {
	switch x := v.(type) {
	case *Array:
		return x.Items, nil
	case string:
		out := make([]Value, 0, len(x))
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	case *Object:
		out := make([]Value, 0, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			out = append(out, val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("jsengine: value of type %s is not iterable", TypeOf(v))
	}
}
