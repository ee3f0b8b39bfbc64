package jsengine

import "fmt"

func evalMember(n *MemberExpr, env *Env) (Value, error) {
	obj, err := evalExpr(n.Object, env)
	if err != nil {
		return nil, err
	}
	if n.Computed {
		idx, err := evalExpr(n.Index, env)
		if err != nil {
			return nil, err
		}
		return getMember(obj, FormatValue(idx))
	}
	return getMember(obj, n.Property)
}

func getMember(obj Value, key string) (Value, error) {
	switch o := obj.(type) {
	case *Object:
		if v, ok := o.Get(key); ok {
			return v, nil
		}
		return UndefinedValue, nil
	case *Array:
		if key == "length" {
			return float64(len(o.Items)), nil
		}
		if idx, ok := parseIndex(key); ok {
			if idx >= 0 && idx < len(o.Items) {
				return o.Items[idx], nil
			}
			return UndefinedValue, nil
		}
		return UndefinedValue, nil
	case string:
		if key == "length" {
			return float64(len([]rune(o))), nil
		}
		if idx, ok := parseIndex(key); ok {
			runes := []rune(o)
			if idx >= 0 && idx < len(runes) {
				return string(runes[idx]), nil
			}
			return UndefinedValue, nil
		}
		return UndefinedValue, nil
	case *NativeFunction:
		if o.Props != nil {
			if v, ok := o.Props.Get(key); ok {
				return v, nil
			}
		}
		return UndefinedValue, nil
	case nil, Undefined, Null:
		return nil, fmt.Errorf("jsengine: cannot read property %q of %s", key, TypeOf(obj))
	default:
		return UndefinedValue, nil
	}
}

func parseIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	n := 0
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
