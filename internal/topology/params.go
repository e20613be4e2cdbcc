package topology

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/topograph/core/internal/models"
)

// Params is a topology parameter set after merging over the defaults.
type Params map[string]any

// ParamSpec documents one accepted parameter.
type ParamSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Schema maps parameter names to their documentation.
type Schema map[string]ParamSpec

// MergeParams overlays user params on defaults. A user key set to null keeps
// the default. Neither input is modified.
func MergeParams(defaults, user map[string]any) Params {
	merged := make(Params, len(defaults)+len(user))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range user {
		if v == nil {
			continue
		}
		merged[k] = v
	}
	return merged
}

func paramError(key, format string, args ...any) error {
	return models.Schemaf("params."+key, format, args...)
}

// String returns the string value of key, or "" when unset.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", paramError(key, "must be a string, got %T", v)
	}
	return strings.TrimSpace(s), nil
}

// Int returns the integer value of key, or fallback when unset.
func (p Params) Int(key string, fallback int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback, nil
	}
	n, err := AsInt(v)
	if err != nil {
		return 0, paramError(key, "%v", err)
	}
	return n, nil
}

// Float returns the numeric value of key, or fallback when unset.
func (p Params) Float(key string, fallback float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback, nil
	}
	f, err := AsFloat(v)
	if err != nil {
		return 0, paramError(key, "%v", err)
	}
	return f, nil
}

// StringList returns key as a list of strings, or nil when unset.
func (p Params) StringList(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, err := asStringList(v)
	if err != nil {
		return nil, paramError(key, "%v", err)
	}
	return list, nil
}

// IntList accepts either a single integer or a list of integers. scalar
// reports which form was given.
func (p Params) IntList(key string) (values []int, scalar bool, err error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, false, nil
	}

	switch list := v.(type) {
	case []int:
		return append([]int(nil), list...), false, nil
	case []any:
		out := make([]int, 0, len(list))
		for i, item := range list {
			n, err := AsInt(item)
			if err != nil {
				return nil, false, paramError(key, "element %d: %v", i, err)
			}
			out = append(out, n)
		}
		return out, false, nil
	default:
		n, err := AsInt(v)
		if err != nil {
			return nil, false, paramError(key, "must be an integer or a list of integers: %v", err)
		}
		return []int{n}, true, nil
	}
}

// StringListMap returns key as a mapping from string to string list. A bare
// string value is treated as a one-element list.
func (p Params) StringListMap(key string) (map[string][]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}

	switch m := v.(type) {
	case map[string][]string:
		return m, nil
	case map[string]any:
		out := make(map[string][]string, len(m))
		for k, item := range m {
			if s, ok := item.(string); ok {
				out[k] = []string{s}
				continue
			}
			list, err := asStringList(item)
			if err != nil {
				return nil, paramError(key, "entry %q: %v", k, err)
			}
			out[k] = list
		}
		return out, nil
	default:
		return nil, paramError(key, "must be an object mapping keys to lists, got %T", v)
	}
}

func asStringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d must be a string, got %T", i, item)
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a list of strings, got %T", v)
	}
}

// AsInt converts decoded JSON, YAML and HCL numbers to int. Floats must be
// integral; numeric strings are accepted.
func AsInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n.String())
		}
		return floatToInt(f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("must be an integer, got %T", v)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("must be an integer, got %v", f)
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int(f), nil
}

// AsFloat converts decoded numbers and numeric strings to float64.
func AsFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n)
		}
		return f, nil
	default:
		i, err := AsInt(v)
		if err != nil {
			return 0, fmt.Errorf("must be a number, got %T", v)
		}
		return float64(i), nil
	}
}
