package schema

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
)

// Coercion normalizes record values toward their declared field kind.
// It is best-effort on purpose: a value that cannot be represented in the
// declared kind passes through unchanged, since record shape is not an
// invariant at write time. The bool result reports whether the returned
// value conforms to the kind.

// CoerceValue normalizes v toward the declared field type.
func CoerceValue(t FieldType, v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, true
	}

	switch t {
	case FieldString:
		return coerceString(v)
	case FieldNumber:
		return coerceNumber(v)
	case FieldBoolean:
		return coerceBoolean(v)
	case FieldDate:
		return coerceDate(v)
	case FieldEmail:
		return coerceEmail(v)
	case FieldJSON:
		// Any JSON value is acceptable as-is.
		return v, true
	}
	return v, false
}

// ApplyDefaults fills declared defaults into payload for fields that are
// absent. Fields already present, even with a null value, are left alone.
func ApplyDefaults(m *ModelDescriptor, payload map[string]interface{}) {
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Default == nil {
			continue
		}
		if _, present := payload[f.Name]; !present {
			payload[f.Name] = f.Default
		}
	}
}

// CoerceRecord normalizes every declared field present in payload.
// Undeclared keys pass through untouched.
func CoerceRecord(m *ModelDescriptor, payload map[string]interface{}) {
	for i := range m.Fields {
		f := &m.Fields[i]
		if v, present := payload[f.Name]; present {
			coerced, _ := CoerceValue(f.Type, v)
			payload[f.Name] = coerced
		}
	}
}

func coerceString(v interface{}) (interface{}, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	}
	return v, false
}

func coerceNumber(v interface{}) (interface{}, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return v, false
}

func coerceBoolean(v interface{}) (interface{}, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed, true
		}
	case float64:
		if b == 0 || b == 1 {
			return b == 1, true
		}
	}
	return v, false
}

// dateLayouts are tried in order when parsing date strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func coerceDate(v interface{}) (interface{}, bool) {
	switch d := v.(type) {
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t.UTC().Format(time.RFC3339Nano), true
			}
		}
	case float64:
		// Milliseconds since epoch, the usual JSON wire form.
		ms := int64(d)
		return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano), true
	case time.Time:
		return d.UTC().Format(time.RFC3339Nano), true
	}
	return v, false
}

func coerceEmail(v interface{}) (interface{}, bool) {
	s, ok := v.(string)
	if !ok {
		return v, false
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return s, false
	}
	return addr.Address, true
}

// Timestamp returns the canonical descriptor/record timestamp for t.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatValue renders a coerced value for logs and CLI output.
func FormatValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}
