package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Row is an untyped object decoded from the timing API.
type Row map[string]any

// FieldChain is an ordered list of upstream key names for one logical field.
// The first key that is present and non-empty wins; later keys are only
// consulted when earlier ones are absent, null, or blank.
type FieldChain []string

func (c FieldChain) raw(row Row) (any, bool) {
	for _, key := range c {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String returns the first non-empty value as trimmed text, or nil.
func (c FieldChain) String(row Row) *string {
	v, ok := c.raw(row)
	if !ok {
		return nil
	}
	var s string
	switch typed := v.(type) {
	case string:
		s = strings.TrimSpace(typed)
	case float64:
		s = strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		s = typed.String()
	case int:
		s = strconv.Itoa(typed)
	case int64:
		s = strconv.FormatInt(typed, 10)
	case bool:
		s = strconv.FormatBool(typed)
	default:
		return nil
	}
	return &s
}

// Text is String without the pointer; absent fields yield "".
func (c FieldChain) Text(row Row) string {
	if s := c.String(row); s != nil {
		return *s
	}
	return ""
}

// Int64 parses the first non-empty value. Non-numeric or fractional values yield nil.
func (c FieldChain) Int64(row Row) *int64 {
	v, ok := c.raw(row)
	if !ok {
		return nil
	}
	var n int64
	switch typed := v.(type) {
	case float64:
		if typed != math.Trunc(typed) || math.IsInf(typed, 0) || math.IsNaN(typed) {
			return nil
		}
		n = int64(typed)
	case int:
		n = int64(typed)
	case int64:
		n = typed
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

func (c FieldChain) Int(row Row) *int {
	n := c.Int64(row)
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

func (c FieldChain) Float64(row Row) *float64 {
	v, ok := c.raw(row)
	if !ok {
		return nil
	}
	var f float64
	switch typed := v.(type) {
	case float64:
		f = typed
	case int:
		f = float64(typed)
	case int64:
		f = float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// Bool accepts JSON booleans, "true"/"T"/"1" style strings and 0/1 numbers.
func (c FieldChain) Bool(row Row) bool {
	v, ok := c.raw(row)
	if !ok {
		return false
	}
	switch typed := v.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "t", "yes", "y", "1":
			return true
		}
	}
	return false
}

// Rows returns the first present key holding a list of objects.
func (c FieldChain) Rows(row Row) []Row {
	for _, key := range c {
		list, ok := row[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		out := make([]Row, 0, len(list))
		for _, item := range list {
			switch typed := item.(type) {
			case map[string]any:
				out = append(out, Row(typed))
			case Row:
				out = append(out, typed)
			}
		}
		return out
	}
	return nil
}
