package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Fields is an open mapping that keeps keys in the order they were received.
// The zero Fields is empty and ready to decode into.
type Fields struct {
	*orderedmap.OrderedMap[string, Value]
}

// NewFields returns an empty Fields mapping.
func NewFields() *Fields {
	return &Fields{OrderedMap: orderedmap.New[string, Value]()}
}

// Len reports the number of keys.
func (f *Fields) Len() int {
	if f == nil || f.OrderedMap == nil {
		return 0
	}
	return f.OrderedMap.Len()
}

// Number returns the value under key when it is a number.
func (f *Fields) Number(key string) (float64, bool) {
	v, ok := Lookup(f, key)
	if !ok {
		return 0, false
	}
	return v.Number()
}

// MarshalJSON implements json.Marshaler.
func (f *Fields) MarshalJSON() ([]byte, error) {
	if f == nil || f.OrderedMap == nil {
		return []byte("{}"), nil
	}
	return f.OrderedMap.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. Keys keep their wire order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	if f.OrderedMap == nil {
		f.OrderedMap = orderedmap.New[string, Value]()
	}
	return f.OrderedMap.UnmarshalJSON(data)
}

// Value is a tagged JSON value: null, bool, number, string, object or array.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	obj  *Fields
	arr  []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ObjectValue wraps a nested mapping. A nil mapping is stored as an empty one.
func ObjectValue(f *Fields) Value {
	if f == nil {
		f = NewFields()
	}
	return Value{kind: KindObject, obj: f}
}

// ArrayValue wraps a sequence.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the bool variant.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Number returns the number variant.
func (v Value) Number() (float64, bool) { return v.n, v.kind == KindNumber }

// Str returns the string variant.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Object returns the nested mapping variant.
func (v Value) Object() (*Fields, bool) { return v.obj, v.kind == KindObject }

// Array returns the sequence variant.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return v.obj.MarshalJSON()
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler. Object keys keep their wire order.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input", ErrInvalidValue)
	}
	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return fmt.Errorf("%w: %q", ErrInvalidValue, data)
		}
		*v = Null()
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		*v = BoolValue(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		*v = StringValue(s)
	case '{':
		obj := NewFields()
		if err := obj.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		*v = ObjectValue(obj)
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		*v = ArrayValue(items...)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		*v = NumberValue(n)
	}
	return nil
}

// Lookup returns the value stored under key, or null when f is nil or the key is missing.
func Lookup(f *Fields, key string) (Value, bool) {
	if f == nil || f.OrderedMap == nil {
		return Null(), false
	}
	return f.Get(key)
}
