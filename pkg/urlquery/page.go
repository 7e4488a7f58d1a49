package urlquery

import (
	"encoding/json"
	"strconv"
)

// Optional is an integer that may be unset. The zero value is unset.
type Optional struct {
	value int
	set   bool
}

// Some returns a set Optional.
func Some(n int) Optional {
	return Optional{value: n, set: true}
}

// None returns an unset Optional.
func None() Optional {
	return Optional{}
}

// Get returns the value and whether it is set.
func (o Optional) Get() (int, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional) IsSet() bool {
	return o.set
}

// String renders the value, or "" when it is unset or zero.
func (o Optional) String() string {
	if !o.set || o.value == 0 {
		return ""
	}
	return strconv.Itoa(o.value)
}

// MarshalJSON encodes an unset value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as unset.
func (o *Optional) UnmarshalJSON(data []byte) error {
	var n *int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n == nil {
		*o = None()
		return nil
	}
	*o = Some(*n)
	return nil
}

// MarshalYAML encodes an unset value as null.
func (o Optional) MarshalYAML() (any, error) {
	if !o.set {
		return nil, nil
	}
	return o.value, nil
}
