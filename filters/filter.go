// Package filters turns the declarative project filter (field -> operator ->
// literal) into a predicate over native project columns and EAV attribute rows.
package filters

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ErrMalformed is returned for filter input that is not a two-level
// field -> operator -> literal mapping.
var ErrMalformed = errors.New("malformed filter")

// Operator is a comparison supported by the filter language
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLike         Operator = "LIKE"
)

// ParseOperator normalizes an operator token. LIKE is case-insensitive.
func ParseOperator(raw string) (Operator, error) {
	op := Operator(strings.TrimSpace(raw))
	if strings.EqualFold(string(op), string(OpLike)) {
		return OpLike, nil
	}
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return op, nil
	}
	return "", fmt.Errorf("%w: unsupported operator %q", ErrMalformed, raw)
}

// Condition is one operator/literal pair applied to a field
type Condition struct {
	Operator Operator
	Literal  string
}

// Field groups the conditions on one field name. All conditions must hold.
type Field struct {
	Name       string
	Conditions []Condition
}

// Filter is a conjunction of per-field conditions. Fields are kept sorted by
// name and conditions by operator so compiled output is deterministic.
type Filter struct {
	Fields []Field
}

// IsEmpty reports whether the filter has no conditions
func (f Filter) IsEmpty() bool {
	return len(f.Fields) == 0
}

// FromMap builds a filter from the nested field -> operator -> literal form
func FromMap(raw map[string]map[string]string) (Filter, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	filter := Filter{Fields: make([]Field, 0, len(names))}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return Filter{}, fmt.Errorf("%w: empty field name", ErrMalformed)
		}
		ops := raw[name]
		if len(ops) == 0 {
			return Filter{}, fmt.Errorf("%w: field %q has no conditions", ErrMalformed, name)
		}

		field := Field{Name: name, Conditions: make([]Condition, 0, len(ops))}
		seen := make(map[Operator]bool, len(ops))
		for rawOp, literal := range ops {
			op, err := ParseOperator(rawOp)
			if err != nil {
				return Filter{}, err
			}
			if seen[op] {
				return Filter{}, fmt.Errorf("%w: operator %s repeated for field %q", ErrMalformed, op, name)
			}
			seen[op] = true
			field.Conditions = append(field.Conditions, Condition{Operator: op, Literal: literal})
		}
		sort.Slice(field.Conditions, func(i, j int) bool {
			return field.Conditions[i].Operator < field.Conditions[j].Operator
		})
		filter.Fields = append(filter.Fields, field)
	}
	return filter, nil
}

// FromJSON parses {"field": {"op": literal}}. Literals may be JSON strings or numbers.
func FromJSON(data []byte) (Filter, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Filter{}, nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return Filter{}, fmt.Errorf("%w: expected an object of fields: %v", ErrMalformed, err)
	}

	raw := make(map[string]map[string]string, len(outer))
	for name, body := range outer {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(body, &inner); err != nil || inner == nil {
			return Filter{}, fmt.Errorf("%w: field %q must map operators to values", ErrMalformed, name)
		}
		ops := make(map[string]string, len(inner))
		for op, value := range inner {
			literal, err := decodeLiteral(value)
			if err != nil {
				return Filter{}, fmt.Errorf("%w: field %q operator %q: %v", ErrMalformed, name, op, err)
			}
			ops[op] = literal
		}
		raw[name] = ops
	}
	return FromMap(raw)
}

func decodeLiteral(value json.RawMessage) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(value))
	decoder.UseNumber()

	var decoded interface{}
	if err := decoder.Decode(&decoded); err != nil {
		return "", err
	}
	switch v := decoded.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", errors.New("value must be a string or a number")
	}
}

var queryKey = regexp.MustCompile(`^([A-Za-z_]+)\[([^\[\]]+)\]\[([^\[\]]+)\]$`)

// FromQuery collects bracketed query parameters such as
// filters[department][LIKE]=Engin. Any key starting with param that is not
// exactly two levels deep is malformed.
func FromQuery(values url.Values, param string) (Filter, error) {
	raw := make(map[string]map[string]string)
	for key, vals := range values {
		if key != param && !strings.HasPrefix(key, param+"[") {
			continue
		}
		m := queryKey.FindStringSubmatch(key)
		if m == nil || m[1] != param {
			return Filter{}, fmt.Errorf("%w: parameter %q must look like %s[field][operator]", ErrMalformed, key, param)
		}
		if len(vals) != 1 {
			return Filter{}, fmt.Errorf("%w: parameter %q given %d times", ErrMalformed, key, len(vals))
		}
		field, op := m[2], m[3]
		if raw[field] == nil {
			raw[field] = make(map[string]string)
		}
		raw[field][op] = vals[0]
	}
	return FromMap(raw)
}

// FromRequest reads a filter from query parameters. The param value may hold a
// JSON object; otherwise bracketed keys are used. Mixing the two forms is
// malformed.
func FromRequest(values url.Values, param string) (Filter, error) {
	raw, ok := values[param]
	if !ok {
		return FromQuery(values, param)
	}
	for key := range values {
		if strings.HasPrefix(key, param+"[") {
			return Filter{}, fmt.Errorf("%w: %s and %q cannot be combined", ErrMalformed, param, key)
		}
	}
	if len(raw) != 1 {
		return Filter{}, fmt.Errorf("%w: parameter %q given %d times", ErrMalformed, param, len(raw))
	}
	return FromJSON([]byte(raw[0]))
}
