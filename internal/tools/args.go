package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// arguments holds validated tool arguments: strings for KindString and ints
// for KindNumber. Omitted optional parameters are absent.
type arguments map[string]any

func (a arguments) str(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a arguments) integer(name string) int {
	n, _ := a[name].(int)
	return n
}

// validate checks args against the descriptor's declared parameters.
// Arguments that are not declared are ignored. An optional string given as
// "" counts as omitted.
func (d Descriptor) validate(args map[string]any) (arguments, error) {
	out := make(arguments, len(d.Params))

	for _, p := range d.Params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			if p.Required {
				return nil, d.invalid(p, "is required")
			}
			continue
		}

		switch p.Kind {
		case KindString:
			s, ok := raw.(string)
			if !ok {
				return nil, d.invalid(p, fmt.Sprintf("must be a string, got %T", raw))
			}
			if s == "" {
				if p.Required {
					return nil, d.invalid(p, "must not be empty")
				}
				continue
			}
			out[p.Name] = s

		case KindNumber:
			f, ok := toFloat(raw)
			if !ok {
				return nil, d.invalid(p, fmt.Sprintf("must be a number, got %T", raw))
			}
			if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
				return nil, d.invalid(p, "must be an integer")
			}
			if f < p.Min || f > p.Max {
				return nil, d.invalid(p, fmt.Sprintf("must be between %g and %g", p.Min, p.Max))
			}
			out[p.Name] = int(f)
		}
	}

	return out, nil
}

func (d Descriptor) invalid(p Param, reason string) error {
	return &ValidationError{Tool: d.Name(), Param: p.Name, Reason: reason}
}

// toFloat accepts the numeric types an MCP host or a Go caller may supply.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
