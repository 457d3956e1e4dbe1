package confignode

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// FromNative converts decoded Go values (the shapes produced by
// encoding/json, yaml.v3 and go-toml) into a tree.
func FromNative(v any) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Node:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		if !ValidNumber(string(val)) {
			return nil, fmt.Errorf("invalid number %q", string(val))
		}
		return Number(val), nil
	case int:
		return Number(strconv.FormatInt(int64(val), 10)), nil
	case int8:
		return Number(strconv.FormatInt(int64(val), 10)), nil
	case int16:
		return Number(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return Number(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return Number(strconv.FormatInt(val, 10)), nil
	case uint:
		return Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return Number(strconv.FormatUint(val, 10)), nil
	case float32:
		return floatNumber(float64(val))
	case float64:
		return floatNumber(val)
	case *big.Float:
		return bigFloatNumber(val)
	case time.Time:
		return String(val.Format(time.RFC3339Nano)), nil
	case []any:
		out := make(List, 0, len(val))
		for i, item := range val {
			n, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, n)
		}
		return out, nil
	case []map[string]any:
		out := make(List, 0, len(val))
		for i, item := range val {
			n, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, n)
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(val))
		for k, item := range val {
			n, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case fmt.Stringer:
		// go-toml local dates and times.
		return String(val.String()), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// floatNumber keeps a float recognisable as a float: integral values get a
// ".0" suffix so they do not come back as integers.
func floatNumber(f float64) (Node, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return Number(s), nil
}

func bigFloatNumber(f *big.Float) (Node, error) {
	if f.IsInf() {
		return nil, fmt.Errorf("non-finite number %s", f.String())
	}
	if f.IsInt() {
		return Number(f.Text('f', 0)), nil
	}
	s := f.Text('g', -1)
	if !ValidNumber(s) {
		return nil, fmt.Errorf("cannot represent number %s", s)
	}
	return Number(s), nil
}

// ToNative converts a tree into plain Go values: map[string]any, []any,
// string, json.Number, bool and nil.
func ToNative(n Node) any {
	switch val := n.(type) {
	case Map:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = ToNative(v)
		}
		return out
	case List:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = ToNative(v)
		}
		return out
	case String:
		return string(val)
	case Number:
		return json.Number(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}
