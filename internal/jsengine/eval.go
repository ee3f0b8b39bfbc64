package jsengine

import (
	"fmt"
	"strings"
)

func evalExpr(node Node, env *Env) (Value, error) {
	switch n := node.(type) {
	case *NumberLit:
		return n.Value, nil
	case *StringLit:
		return n.Value, nil
	case *BoolLit:
		return n.Value, nil
	case *NullLit:
		return NullValue, nil
	case *UndefinedLit:
		return UndefinedValue, nil
	case *Identifier:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, fmt.Errorf("jsengine: %q is not defined", n.Name)
		}
		return v, nil
	case *TemplateLit:
		return evalTemplate(n, env)
	case *ObjectLit:
		return evalObjectLit(n, env)
	case *ArrayLit:
		return evalArrayLit(n, env)
	case *FunctionLit:
		return &Function{Name: n.Name, Params: n.Params, Body: n.Body, Closure: env, IsAsync: n.IsAsync}, nil
	case *UnaryExpr:
		return evalUnary(n, env)
	case *UpdateExpr:
		return evalUpdate(n, env)
	case *BinaryExpr:
		return evalBinary(n, env)
	case *LogicalExpr:
		return evalLogical(n, env)
	case *ConditionalExpr:
		cond, err := evalExpr(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if IsTruthy(cond) {
			return evalExpr(n.Then, env)
		}
		return evalExpr(n.Else, env)
	case *AssignExpr:
		return evalAssign(n, env)
	case *MemberExpr:
		return evalMember(n, env)
	case *CallExpr:
		return evalCall(n, env)
	case *AwaitExpr:
		v, err := evalExpr(n.X, env)
		if err != nil {
			return nil, err
		}
		return unwrapAwait(v)
	case *SpreadExpr:
		return evalExpr(n.X, env)
	default:
		return nil, fmt.Errorf("jsengine: cannot evaluate node of type %T", node)
	}
}

func unwrapAwait(v Value) (Value, error) {
	if p, ok := v.(*Promise); ok {
		if p.Err != nil {
			return nil, p.Err
		}
		return p.Value, nil
	}
	return v, nil
}

func evalTemplate(n *TemplateLit, env *Env) (Value, error) {
	var sb strings.Builder
	for i, part := range n.Parts {
		sb.WriteString(part)
		if i < len(n.Exprs) {
			v, err := evalExpr(n.Exprs[i], env)
			if err != nil {
				return nil, err
			}
			sb.WriteString(FormatValue(v))
		}
	}
	return sb.String(), nil
}

func evalObjectLit(n *ObjectLit, env *Env) (Value, error) {
	obj := NewObject()
	for _, prop := range n.Props {
		if prop.Spread {
			v, err := evalExpr(prop.Value, env)
			if err != nil {
				return nil, err
			}
			if src, ok := v.(*Object); ok {
				for _, k := range src.Keys() {
					val, _ := src.Get(k)
					obj.Set(k, val)
				}
			}
			continue
		}
		key := prop.Key
		if prop.KeyExpr != nil {
			kv, err := evalExpr(prop.KeyExpr, env)
			if err != nil {
				return nil, err
			}
			key = FormatValue(kv)
		}
		val, err := evalExpr(prop.Value, env)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	return obj, nil
}

func evalArrayLit(n *ArrayLit, env *Env) (Value, error) {
	arr := NewArray()
	for _, elem := range n.Elems {
		val, err := evalExpr(elem.Value, env)
		if err != nil {
			return nil, err
		}
		if elem.Spread {
			if src, ok := val.(*Array); ok {
				arr.Items = append(arr.Items, src.Items...)
				continue
			}
		}
		arr.Items = append(arr.Items, val)
	}
	return arr, nil
}

func evalUnary(n *UnaryExpr, env *Env) (Value, error) {
	if n.Op == "typeof" {
		v, err := evalExpr(n.X, env)
		if err != nil {
			return nil, err
		}
		return TypeOf(v), nil
	}
	v, err := evalExpr(n.X, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "!":
		return !IsTruthy(v), nil
	case "-":
		f, err := asNumber(v)
		if err != nil {
			return nil, err
		}
		return -f, nil
	case "+":
		return asNumber(v)
	}
	return nil, fmt.Errorf("jsengine: unsupported unary operator %q", n.Op)
}

func evalUpdate(n *UpdateExpr, env *Env) (Value, error) {
	cur, err := evalExpr(n.Target, env)
	if err != nil {
		return nil, err
	}
	f, err := asNumber(cur)
	if err != nil {
		return nil, err
	}
	var next float64
	if n.Op == "++" {
		next = f + 1
	} else {
		next = f - 1
	}
	if err := assignTo(n.Target, next, env); err != nil {
		return nil, err
	}
	if n.Prefix {
		return next, nil
	}
	return f, nil
}

func evalBinary(n *BinaryExpr, env *Env) (Value, error) {
	left, err := evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		if ls, ok := left.(string); ok {
			return ls + FormatValue(right), nil
		}
		if rs, ok := right.(string); ok {
			return FormatValue(left) + rs, nil
		}
		lf, err := asNumber(left)
		if err != nil {
			return nil, err
		}
		rf, err := asNumber(right)
		if err != nil {
			return nil, err
		}
		return lf + rf, nil
	case "-", "*", "/", "%":
		lf, err := asNumber(left)
		if err != nil {
			return nil, err
		}
		rf, err := asNumber(right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			return lf / rf, nil
		case "%":
			return float64(int64(lf) % int64(rf)), nil
		}
	case "<", ">", "<=", ">=":
		lf, err := asNumber(left)
		if err != nil {
			return nil, err
		}
		rf, err := asNumber(right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "<":
			return lf < rf, nil
		case ">":
			return lf > rf, nil
		case "<=":
			return lf <= rf, nil
		case ">=":
			return lf >= rf, nil
		}
	case "==", "===":
		return looseEquals(left, right), nil
	case "!=", "!==":
		return !looseEquals(left, right), nil
	}
	return nil, fmt.Errorf("jsengine: unsupported binary operator %q", n.Op)
}

func looseEquals(a, b Value) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af == bf
	}
	as, asok := a.(string)
	bs, bsok := b.(string)
	if asok && bsok {
		return as == bs
	}
	ab, abok := a.(bool)
	bb, bbok := b.(bool)
	if abok && bbok {
		return ab == bb
	}
	if isNullish(a) && isNullish(b) {
		return true
	}
	return false
}

func isNullish(v Value) bool {
	switch v.(type) {
	case nil, Undefined, Null:
		return true
	default:
		return false
	}
}

func evalLogical(n *LogicalExpr, env *Env) (Value, error) {
	left, err := evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	if n.Op == "&&" {
		if !IsTruthy(left) {
			return left, nil
		}
		return evalExpr(n.Right, env)
	}
	if IsTruthy(left) {
		return left, nil
	}
	return evalExpr(n.Right, env)
}

func evalAssign(n *AssignExpr, env *Env) (Value, error) {
	val, err := evalExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	if n.Op != "=" {
		cur, err := evalExpr(n.Target, env)
		if err != nil {
			return nil, err
		}
		cf, err := asNumber(cur)
		if err != nil {
			return nil, err
		}
		vf, err := asNumber(val)
		if err != nil {
			return nil, err
		}
		if n.Op == "+=" {
			if cs, ok := cur.(string); ok {
				val = cs + FormatValue(val)
			} else {
				val = cf + vf
			}
		} else {
			val = cf - vf
		}
	}
	if err := assignTo(n.Target, val, env); err != nil {
		return nil, err
	}
	return val, nil
}

func assignTo(target Node, val Value, env *Env) error {
	switch t := target.(type) {
	case *Identifier:
		return env.Set(t.Name, val)
	case *MemberExpr:
		obj, err := evalExpr(t.Object, env)
		if err != nil {
			return err
		}
		key := t.Property
		if t.Computed {
			idxVal, err := evalExpr(t.Index, env)
			if err != nil {
				return err
			}
			return setMember(obj, idxVal, val)
		}
		return setMember(obj, key, val)
	default:
		return fmt.Errorf("jsengine: invalid assignment target")
	}
}

func setMember(obj Value, key Value, val Value) error {
	switch o := obj.(type) {
	case *Object:
		o.Set(FormatValue(key), val)
		return nil
	case *Array:
		idx, err := asNumber(key)
		if err != nil {
			return err
		}
		i := int(idx)
		for i >= len(o.Items) {
			o.Items = append(o.Items, UndefinedValue)
		}
		o.Items[i] = val
		return nil
	default:
		return fmt.Errorf("jsengine: cannot set property on value of type %s", TypeOf(obj))
	}
}

func asNumber(v Value) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%g", &f); err != nil {
			return 0, fmt.Errorf("jsengine: %q is not a number", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("jsengine: value of type %s is not a number", TypeOf(v))
	}
}
