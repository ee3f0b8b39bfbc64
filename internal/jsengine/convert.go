package jsengine

import "sort"

// ToGo converts a script Value into the plain Go representation the rest of
// the engine works with: map[string]any, []any, float64, string, bool, nil.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil, Undefined, Null:
		return nil
	case float64, string, bool:
		return x
	case *Array:
		out := make([]any, len(x.Items))
		for i, it := range x.Items {
			out[i] = ToGo(it)
		}
		return out
	case *Object:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			out[k] = ToGo(val)
		}
		return out
	default:
		return x
	}
}

// FromGo lifts a plain Go value (as produced by JSON decoding, the params
// package, or a native capability) into the script Value domain. Values
// that are already script Values (objects, arrays, functions) pass through
// unchanged.
func FromGo(a any) Value {
	switch x := a.(type) {
	case nil:
		return UndefinedValue
	case Undefined, Null, *Object, *Array, *Function, *NativeFunction, *Promise:
		return x
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case string:
		return x
	case bool:
		return x
	case []any:
		arr := NewArray()
		for _, it := range x {
			arr.Items = append(arr.Items, FromGo(it))
		}
		return arr
	case map[string]any:
		obj := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, FromGo(x[k]))
		}
		return obj
	default:
		return UndefinedValue
	}
}
