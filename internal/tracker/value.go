package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the scalar type held by a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "undefined"
	}
}

// Value is a tracked scalar. Two values are equal only when both the kind and
// the payload match, so Number(1) and String("1") differ.
//
// The zero Value is undefined and is rejected by Check.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int returns a numeric value equal to Number(float64(i)).
func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i)} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the scalar type.
func (v Value) Kind() Kind { return v.kind }

// IsDefined reports whether v holds any value, null included.
func (v Value) IsDefined() bool { return v.kind != KindUndefined }

// Equal reports strict equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	default:
		return true
	}
}

// Interface returns the payload as string, float64, bool or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.kind.String()
	}
}

func (v Value) validate() error {
	if v.kind == KindUndefined {
		return fmt.Errorf("value is undefined")
	}
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return fmt.Errorf("number %v cannot be stored", v.num)
	}
	return nil
}

// MarshalJSON encodes the payload with its JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts a JSON string, number, boolean or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(x)
	case float64:
		*v = Number(x)
	case bool:
		*v = Bool(x)
	default:
		return fmt.Errorf("value must be a scalar, got %s", bytes.TrimSpace(data)[:1])
	}
	return nil
}

// ParseValue interprets raw as kind. KindUndefined guesses: "null", "true",
// "false" and numbers already written in canonical form keep their type.
// Anything else, including "007", "1.10", "+5" and "1e3", stays a string so
// that a change of text is never hidden by numeric parsing.
func ParseValue(raw string, kind Kind) (Value, error) {
	switch kind {
	case KindString:
		return String(raw), nil
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse number %q: %w", raw, err)
		}
		v := Number(f)
		return v, v.validate()
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("parse bool %q: %w", raw, err)
		}
		return Bool(b), nil
	case KindNull:
		return Null(), nil
	}

	switch raw {
	case "null":
		return Null(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && canonicalNumber(f, raw) {
		return Number(f), nil
	}
	return String(raw), nil
}

// canonicalNumber reports whether raw is exactly how f formats, so reading it
// as a number loses nothing.
func canonicalNumber(f float64, raw string) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return strconv.FormatFloat(f, 'f', -1, 64) == raw
}
