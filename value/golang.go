package value

import (
	"fmt"
	"sort"
)

// Go converts v into plain Go data: nil, bool, int64, float64, string,
// []any and map[string]any.
func (v Value) Go() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Go()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Go()
		}
		return out
	}
	return nil
}

// FromGo converts plain Go data into a Value. Integer types widen to Int,
// float32 widens to Float, and maps must be keyed by string.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Str(t), nil
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = Str(s)
		}
		return List(out), nil
	case []Value:
		return List(t), nil
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromGo(e)
			if err != nil {
				return Null, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = ev
		}
		return List(out), nil
	case map[string]string:
		out := make(map[string]Value, len(t))
		for k, s := range t {
			out[k] = Str(s)
		}
		return Map(out), nil
	case map[string]any:
		out := make(map[string]Value, len(t))
		for _, k := range sortedKeys(t) {
			ev, err := FromGo(t[k])
			if err != nil {
				return Null, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = ev
		}
		return Map(out), nil
	}
	return Null, fmt.Errorf("unsupported Go type %T", x)
}

// MustFromGo is FromGo for literals in tests and fixed tables.
func MustFromGo(x any) Value {
	v, err := FromGo(x)
	if err != nil {
		panic(err)
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
