package jsengine

import (
	"fmt"
	"math"
	"strings"
)

func evalCall(n *CallExpr, env *Env) (Value, error) {
	args, err := evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}

	if member, ok := n.Callee.(*MemberExpr); ok {
		receiver, err := evalExpr(member.Object, env)
		if err != nil {
			return nil, err
		}
		key := member.Property
		if member.Computed {
			idx, err := evalExpr(member.Index, env)
			if err != nil {
				return nil, err
			}
			key = FormatValue(idx)
		}
		// A plain property holding a function (e.g. context.logger.info) is
		// called directly; only fall back to a builtin method when the
		// receiver has no such property.
		if obj, ok := receiver.(*Object); ok {
			if fn, found := obj.Get(key); found {
				return CallValue(fn, args)
			}
		}
		return callBuiltinMethod(receiver, key, args)
	}

	callee, err := evalExpr(n.Callee, env)
	if err != nil {
		return nil, err
	}
	return CallValue(callee, args)
}

func evalArgs(nodes []Node, env *Env) ([]Value, error) {
	var out []Value
	for _, a := range nodes {
		if spread, ok := a.(*SpreadExpr); ok {
			v, err := evalExpr(spread.X, env)
			if err != nil {
				return nil, err
			}
			if arr, ok := v.(*Array); ok {
				out = append(out, arr.Items...)
				continue
			}
		}
		v, err := evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// callBuiltinMethod implements the small slice of Array, String and Object
// methods scripts in this domain tend to reach for. There is no prototype
// chain; this is a closed, explicit table. Math functions are plain
// properties of the object NewMathObject builds; there is no JSON global.
func callBuiltinMethod(receiver Value, name string, args []Value) (Value, error) {
	switch r := receiver.(type) {
	case *Array:
		return arrayMethod(r, name, args)
	case string:
		return stringMethod(r, name, args)
	case *Object:
		return objectMethod(r, name, args)
	default:
		return nil, fmt.Errorf("jsengine: %s has no method %q", TypeOf(receiver), name)
	}
}

func arrayMethod(a *Array, name string, args []Value) (Value, error) {
	switch name {
	case "push":
		a.Items = append(a.Items, args...)
		return float64(len(a.Items)), nil
	case "pop":
		if len(a.Items) == 0 {
			return UndefinedValue, nil
		}
		last := a.Items[len(a.Items)-1]
		a.Items = a.Items[:len(a.Items)-1]
		return last, nil
	case "join":
		sep := ","
		if len(args) > 0 {
			sep = FormatValue(args[0])
		}
		parts := make([]string, len(a.Items))
		for i, it := range a.Items {
			parts[i] = FormatValue(it)
		}
		return strings.Join(parts, sep), nil
	case "includes":
		if len(args) == 0 {
			return false, nil
		}
		for _, it := range a.Items {
			if looseEquals(it, args[0]) {
				return true, nil
			}
		}
		return false, nil
	case "slice":
		return sliceArray(a, args), nil
	case "indexOf":
		if len(args) == 0 {
			return float64(-1), nil
		}
		for i, it := range a.Items {
			if looseEquals(it, args[0]) {
				return float64(i), nil
			}
		}
		return float64(-1), nil
	case "map":
		if len(args) == 0 {
			return nil, fmt.Errorf("jsengine: Array.map requires a callback")
		}
		out := NewArray()
		for i, it := range a.Items {
			v, err := CallValue(args[0], []Value{it, float64(i)})
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, v)
		}
		return out, nil
	case "filter":
		if len(args) == 0 {
			return nil, fmt.Errorf("jsengine: Array.filter requires a callback")
		}
		out := NewArray()
		for i, it := range a.Items {
			v, err := CallValue(args[0], []Value{it, float64(i)})
			if err != nil {
				return nil, err
			}
			if IsTruthy(v) {
				out.Items = append(out.Items, it)
			}
		}
		return out, nil
	case "reduce":
		if len(args) == 0 {
			return nil, fmt.Errorf("jsengine: Array.reduce requires a callback")
		}
		var acc Value
		start := 0
		if len(args) > 1 {
			acc = args[1]
		} else if len(a.Items) > 0 {
			acc = a.Items[0]
			start = 1
		} else {
			return nil, fmt.Errorf("jsengine: Array.reduce of empty array with no initial value")
		}
		for i := start; i < len(a.Items); i++ {
			v, err := CallValue(args[0], []Value{acc, a.Items[i], float64(i)})
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	case "forEach":
		if len(args) == 0 {
			return nil, fmt.Errorf("jsengine: Array.forEach requires a callback")
		}
		for i, it := range a.Items {
			if _, err := CallValue(args[0], []Value{it, float64(i)}); err != nil {
				return nil, err
			}
		}
		return UndefinedValue, nil
	default:
		return nil, fmt.Errorf("jsengine: array has no method %q", name)
	}
}

func sliceArray(a *Array, args []Value) *Array {
	n := len(a.Items)
	start, end := 0, n
	if len(args) > 0 {
		start = clampIndex(int(mustNumber(args[0])), n)
	}
	if len(args) > 1 {
		end = clampIndex(int(mustNumber(args[1])), n)
	}
	if start > end {
		return NewArray()
	}
	out := make([]Value, end-start)
	copy(out, a.Items[start:end])
	return &Array{Items: out}
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func mustNumber(v Value) float64 {
	f, _ := asNumber(v)
	return f
}

func stringMethod(s string, name string, args []Value) (Value, error) {
	switch name {
	case "toUpperCase":
		return strings.ToUpper(s), nil
	case "toLowerCase":
		return strings.ToLower(s), nil
	case "trim":
		return strings.TrimSpace(s), nil
	case "repeat":
		n := int(mustNumber(args[0]))
		if n < 0 {
			return nil, fmt.Errorf("jsengine: repeat count must be non-negative")
		}
		return strings.Repeat(s, n), nil
	case "split":
		sep := ""
		if len(args) > 0 {
			sep = FormatValue(args[0])
		}
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		arr := NewArray()
		for _, p := range parts {
			arr.Items = append(arr.Items, p)
		}
		return arr, nil
	case "includes":
		return strings.Contains(s, FormatValue(args[0])), nil
	case "slice", "substring":
		runes := []rune(s)
		n := len(runes)
		start, end := 0, n
		if len(args) > 0 {
			start = clampIndex(int(mustNumber(args[0])), n)
		}
		if len(args) > 1 {
			end = clampIndex(int(mustNumber(args[1])), n)
		}
		if start > end {
			return "", nil
		}
		return string(runes[start:end]), nil
	case "charAt":
		runes := []rune(s)
		i := int(mustNumber(args[0]))
		if i < 0 || i >= len(runes) {
			return "", nil
		}
		return string(runes[i]), nil
	case "padStart":
		width := int(mustNumber(args[0]))
		pad := " "
		if len(args) > 1 {
			pad = FormatValue(args[1])
		}
		return padString(s, width, pad, true), nil
	case "padEnd":
		width := int(mustNumber(args[0]))
		pad := " "
		if len(args) > 1 {
			pad = FormatValue(args[1])
		}
		return padString(s, width, pad, false), nil
	default:
		return nil, fmt.Errorf("jsengine: string has no method %q", name)
	}
}

func padString(s string, width int, pad string, start bool) string {
	if pad == "" || len([]rune(s)) >= width {
		return s
	}
	need := width - len([]rune(s))
	var sb strings.Builder
	for sb.Len() < need {
		sb.WriteString(pad)
	}
	padding := string([]rune(sb.String())[:need])
	if start {
		return padding + s
	}
	return s + padding
}

func objectMethod(o *Object, name string, args []Value) (Value, error) {
	switch name {
	case "hasOwnProperty":
		_, ok := o.Get(FormatValue(args[0]))
		return ok, nil
	default:
		return nil, fmt.Errorf("jsengine: object has no method %q", name)
	}
}

// NewMathObject builds the Math global: a handful of pure functions.
func NewMathObject() *Object {
	obj := NewObject()
	obj.Set("PI", math.Pi)
	obj.Set("floor", nativeFn("Math.floor", func(args []Value) (Value, error) {
		return math.Floor(mustNumber(args[0])), nil
	}))
	obj.Set("ceil", nativeFn("Math.ceil", func(args []Value) (Value, error) {
		return math.Ceil(mustNumber(args[0])), nil
	}))
	obj.Set("round", nativeFn("Math.round", func(args []Value) (Value, error) {
		return math.Round(mustNumber(args[0])), nil
	}))
	obj.Set("abs", nativeFn("Math.abs", func(args []Value) (Value, error) {
		return math.Abs(mustNumber(args[0])), nil
	}))
	obj.Set("max", nativeFn("Math.max", func(args []Value) (Value, error) {
		m := math.Inf(-1)
		for _, a := range args {
			m = math.Max(m, mustNumber(a))
		}
		return m, nil
	}))
	obj.Set("min", nativeFn("Math.min", func(args []Value) (Value, error) {
		m := math.Inf(1)
		for _, a := range args {
			m = math.Min(m, mustNumber(a))
		}
		return m, nil
	}))
	obj.Set("pow", nativeFn("Math.pow", func(args []Value) (Value, error) {
		return math.Pow(mustNumber(args[0]), mustNumber(args[1])), nil
	}))
	return obj
}

func nativeFn(name string, fn func(args []Value) (Value, error)) *NativeFunction {
	return &NativeFunction{Name: name, Fn: fn}
}
