package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================================
// TABLERO ENGINE TYPES — Typed cells for the tabular view-filter engine
// ============================================================================
// A Table is a list of columns with declared kinds and rows of Values.
// Values carry their own kind so comparisons are exact over the declared
// type: numeric cells compare by number, text cells compare by string, and
// a numeric cell never equals its string rendering.
// ============================================================================

// Kind is the declared semantic type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindCategorical:
		return "categorical"
	default:
		return "string"
	}
}

// Numeric reports whether values of this kind hold numbers.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindFloat
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	kind, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind maps a kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string", "":
		return KindString, nil
	case "integer", "int":
		return KindInteger, nil
	case "float", "number":
		return KindFloat, nil
	case "categorical", "category":
		return KindCategorical, nil
	}
	return KindString, fmt.Errorf("unknown column kind %q", s)
}

// ============================================================================
// VALUE — a single typed cell
// ============================================================================

// Value is one cell. The zero Value is a missing string.
type Value struct {
	kind  Kind
	str   string
	num   float64
	valid bool
}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s, valid: true} }

// Categorical builds a categorical label.
func Categorical(s string) Value { return Value{kind: KindCategorical, str: s, valid: true} }

// Int builds an integer value.
func Int(i int64) Value { return Value{kind: KindInteger, num: float64(i), valid: true} }

// Float builds a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, num: f, valid: true} }

// Missing builds a missing cell of the given kind.
func Missing(k Kind) Value { return Value{kind: k} }

// V converts a Go value into a Value. Unsupported types become missing.
func V(x any) Value {
	switch v := x.(type) {
	case Value:
		return v
	case string:
		return String(v)
	case int:
		return Int(int64(v))
	case int64:
		return Int(v)
	case int32:
		return Int(int64(v))
	case float64:
		return Float(v)
	case float32:
		return Float(float64(v))
	case nil:
		return Missing(KindString)
	}
	return Missing(KindString)
}

// Kind returns the kind the value was built with.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool { return !v.valid }

// Number returns the numeric content. ok is false for text or missing cells.
func (v Value) Number() (float64, bool) {
	if !v.valid || !v.kind.Numeric() {
		return 0, false
	}
	return v.num, true
}

// Str returns the text content. ok is false for numeric or missing cells.
func (v Value) Str() (string, bool) {
	if !v.valid || v.kind.Numeric() {
		return "", false
	}
	return v.str, true
}

// Text renders the value for display. Missing cells render empty.
func (v Value) Text() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(int64(v.num), 10)
	case KindFloat:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// As converts the value to another kind of the same family. Text kinds
// convert to text kinds; numeric kinds convert to numeric kinds (integer
// conversion truncates). Cross-family conversions return a missing cell.
func (v Value) As(k Kind) Value {
	if !v.valid {
		return Missing(k)
	}
	if v.kind.Numeric() != k.Numeric() {
		return Missing(k)
	}
	out := v
	out.kind = k
	if k == KindInteger {
		out.num = math.Trunc(v.num)
	}
	return out
}

// Equal is exact equality over the declared type. Missing never equals
// anything, including another missing cell.
func (v Value) Equal(o Value) bool {
	if !v.valid || !o.valid {
		return false
	}
	if v.kind.Numeric() != o.kind.Numeric() {
		return false
	}
	if v.kind.Numeric() {
		return v.num == o.num
	}
	return v.str == o.str
}

// Compare orders two values of the same family. ok is false when either side
// is missing or the families differ.
func (v Value) Compare(o Value) (int, bool) {
	if !v.valid || !o.valid || v.kind.Numeric() != o.kind.Numeric() {
		return 0, false
	}
	if v.kind.Numeric() {
		switch {
		case v.num < o.num:
			return -1, true
		case v.num > o.num:
			return 1, true
		}
		return 0, true
	}
	switch {
	case v.str < o.str:
		return -1, true
	case v.str > o.str:
		return 1, true
	}
	return 0, true
}

// key is a grouping key: family prefix plus canonical content.
func (v Value) key() string {
	if v.kind.Numeric() {
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return "s:" + v.str
}

// MarshalJSON writes null, a number or a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindInteger:
		return []byte(strconv.FormatInt(int64(v.num), 10)), nil
	case KindFloat:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON reads null, a number (integer when whole) or a string.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Missing(KindString)
	case string:
		*v = String(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			*v = Int(int64(x))
		} else {
			*v = Float(x)
		}
	case bool:
		*v = String(strconv.FormatBool(x))
	default:
		return fmt.Errorf("unsupported JSON value %s", string(b))
	}
	return nil
}

// Column is a named, typed table column.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}
