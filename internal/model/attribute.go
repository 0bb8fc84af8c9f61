package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// AttributeValue is a typed span attribute value. The concrete type is one
// of StringValue, IntValue, DoubleValue or OtherValue.
type AttributeValue interface {
	isAttributeValue()
}

// StringValue is a string attribute.
type StringValue string

// IntValue is an integral numeric attribute.
type IntValue int64

// DoubleValue is a non-integral (or out of int64 range) numeric attribute.
type DoubleValue float64

// OtherValue holds any other JSON value (bool, array, object) verbatim.
type OtherValue json.RawMessage

func (StringValue) isAttributeValue() {}
func (IntValue) isAttributeValue()    {}
func (DoubleValue) isAttributeValue() {}
func (OtherValue) isAttributeValue()  {}

// MarshalJSON writes the raw value, or null when empty.
func (v OtherValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(v).MarshalJSON()
}

// Attributes maps attribute keys to values. A key mapped to a nil value was
// present on the wire with a null value.
//
// Encoding sorts keys, so rendered output is deterministic.
type Attributes map[string]AttributeValue

// Clone returns a shallow copy. Values are immutable so a shallow copy is
// enough to make the result independent of a.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// String returns the string value of key, if key holds a StringValue.
func (a Attributes) String(key string) (string, bool) {
	switch v := a[key].(type) {
	case StringValue:
		return string(v), true
	case IntValue, DoubleValue, OtherValue, nil:
	}
	return "", false
}

// Display renders the value of key as display text. Strings are returned
// as-is and numbers without trailing zeroes, so "200", 200 and 200.0 all
// render as "200". Other values and missing keys report false.
func (a Attributes) Display(key string) (string, bool) {
	switch v := a[key].(type) {
	case StringValue:
		return string(v), true
	case IntValue:
		return strconv.FormatInt(int64(v), 10), true
	case DoubleValue:
		return strconv.FormatFloat(float64(v), 'f', -1, 64), true
	case OtherValue, nil:
	}
	return "", false
}

// UnmarshalJSON decodes a JSON object into typed attribute values.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: decode attributes: %w", err)
	}

	out := make(Attributes, len(raw))
	for key, msg := range raw {
		v, err := decodeAttributeValue(msg)
		if err != nil {
			return fmt.Errorf("model: decode attribute %q: %w", key, err)
		}
		out[key] = v
	}
	*a = out
	return nil
}

func decodeAttributeValue(msg json.RawMessage) (AttributeValue, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	switch c := trimmed[0]; {
	case c == 'n':
		return nil, nil
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return StringValue(s), nil
	case c == '-' || (c >= '0' && c <= '9'):
		return decodeNumber(string(trimmed))
	default:
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("invalid JSON value")
		}
		return OtherValue(bytes.Clone(trimmed)), nil
	}
}

func decodeNumber(lit string) (AttributeValue, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return IntValue(n), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", lit)
	}
	return DoubleValue(f), nil
}
