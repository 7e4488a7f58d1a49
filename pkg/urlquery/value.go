package urlquery

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindStructural is an opaque value rendered as JSON.
	KindStructural Kind = iota
	// KindBigInt is an arbitrary precision integer.
	KindBigInt
	// KindBool renders as "1" or "0".
	KindBool
	// KindNumber is an integer or floating point number.
	KindNumber
	// KindString renders unchanged.
	KindString
	// KindSequence is a list of values joined with ",".
	KindSequence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBigInt:
		return "bigint"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	default:
		return "structural"
	}
}

// Value is a filter value. The zero Value is a structural nil and renders
// as "null".
type Value struct {
	kind    Kind
	bigint  *big.Int
	boolean bool
	integer int64
	float   float64
	isFloat bool
	str     string
	seq     []Value
	opaque  any
}

// BigInt returns a big integer value. A nil n is treated as zero.
func BigInt(n *big.Int) Value {
	v := new(big.Int)
	if n != nil {
		v.Set(n)
	}
	return Value{kind: KindBigInt, bigint: v}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Int returns an integer number value.
func Int(n int64) Value {
	return Value{kind: KindNumber, integer: n}
}

// Float returns a floating point number value.
func Float(f float64) Value {
	return Value{kind: KindNumber, float: f, isFloat: true}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Sequence returns a list value.
func Sequence(items ...Value) Value {
	seq := make([]Value, len(items))
	copy(seq, items)
	return Value{kind: KindSequence, seq: seq}
}

// Structural wraps an arbitrary value rendered as JSON.
func Structural(v any) Value {
	return Value{kind: KindStructural, opaque: v}
}

// ValueOf converts a Go value to a Value, checking in order: big integers,
// booleans, numbers, strings, slices and arrays. Anything else, including
// maps, structs and nil, becomes structural. A Value is returned unchanged.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case *big.Int:
		if x == nil {
			return Structural(nil)
		}
		return BigInt(x)
	case big.Int:
		return BigInt(&x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return fromUint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Int(n)
		}
		if f, err := x.Float64(); err == nil {
			return Float(f)
		}
		return String(x.String())
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Sequence()
		}
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = ValueOf(rv.Index(i).Interface())
		}
		return Value{kind: KindSequence, seq: items}
	}
	return Structural(v)
}

func fromUint(n uint64) Value {
	if n > math.MaxInt64 {
		return BigInt(new(big.Int).SetUint64(n))
	}
	return Int(int64(n))
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Interface returns v as a plain Go value: *big.Int, bool, int64, float64,
// string, []any or the wrapped structural value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBigInt:
		return new(big.Int).Set(v.bigint)
	case KindBool:
		return v.boolean
	case KindNumber:
		if v.isFloat {
			return v.float
		}
		return v.integer
	case KindString:
		return v.str
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}
		return out
	default:
		return v.opaque
	}
}

// Format renders v as a filter value. Nil sequence elements render empty.
func (v Value) Format() string {
	switch v.kind {
	case KindBool:
		if v.boolean {
			return "1"
		}
		return "0"
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, item := range v.seq {
			if item.kind == KindStructural && item.opaque == nil {
				continue
			}
			parts[i] = item.text()
		}
		return strings.Join(parts, ",")
	default:
		return v.text()
	}
}

// text is the natural text form used for sequence elements, where booleans
// print as true/false.
func (v Value) text() string {
	switch v.kind {
	case KindBigInt:
		return v.bigint.String()
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNumber:
		if v.isFloat {
			return formatFloat(v.float)
		}
		return strconv.FormatInt(v.integer, 10)
	case KindString:
		return v.str
	case KindSequence:
		return v.Format()
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v.opaque); err != nil {
			return ""
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal reports whether v and o hold the same variant and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBigInt:
		return v.bigint.Cmp(o.bigint) == 0
	case KindBool:
		return v.boolean == o.boolean
	case KindNumber:
		if v.isFloat != o.isFloat {
			return false
		}
		if v.isFloat {
			return v.float == o.float
		}
		return v.integer == o.integer
	case KindString:
		return v.str == o.str
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(v.opaque, o.opaque)
	}
}

// MarshalJSON encodes v as its natural JSON form. Big integers are encoded
// as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBigInt:
		return []byte(v.bigint.String()), nil
	case KindNumber:
		if v.isFloat && (math.IsNaN(v.float) || math.IsInf(v.float, 0)) {
			return json.Marshal(formatFloat(v.float))
		}
		return json.Marshal(v.Interface())
	case KindSequence:
		return json.Marshal(v.seq)
	default:
		return json.Marshal(v.Interface())
	}
}

// UnmarshalJSON decodes any JSON value. Integral numbers that overflow
// int64 become big integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromJSON(raw)
	return nil
}

// MarshalYAML encodes v as its natural form.
func (v Value) MarshalYAML() (any, error) {
	if v.kind == KindBigInt {
		return v.bigint.String(), nil
	}
	return v.Interface(), nil
}

func fromJSON(raw any) Value {
	switch x := raw.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Int(n)
		}
		if b, ok := new(big.Int).SetString(x.String(), 10); ok {
			return BigInt(b)
		}
		f, _ := x.Float64()
		return Float(f)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = fromJSON(item)
		}
		return Value{kind: KindSequence, seq: items}
	default:
		return ValueOf(x)
	}
}

// String implements fmt.Stringer with the filter rendering.
func (v Value) String() string {
	return v.Format()
}
