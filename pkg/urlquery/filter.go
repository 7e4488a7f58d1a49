package urlquery

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

var filtersType = reflect.TypeOf(Filters{})

// FilterEntry is one column/value pair.
type FilterEntry struct {
	Column string `json:"column" yaml:"column"`
	Value  Value  `json:"value" yaml:"value"`
}

// Fragment renders the entry as filter[<column>]=<value>.
func (e FilterEntry) Fragment() string {
	return "filter[" + e.Column + "]=" + e.Value.Format()
}

// Filters maps filter columns to values and remembers insertion order.
// Overwriting a column keeps its original position. The zero value is an
// empty map. Filters is copy-on-write: With and Without return new maps.
type Filters struct {
	keys   []string
	values map[string]Value
}

// NewFilters builds filters from entries in order. Later entries overwrite
// earlier ones with the same column.
func NewFilters(entries ...FilterEntry) Filters {
	var f Filters
	for _, e := range entries {
		f = f.With(e.Column, e.Value)
	}
	return f
}

// Len returns the number of filters.
func (f Filters) Len() int {
	return len(f.keys)
}

// Get returns the value for column.
func (f Filters) Get(column string) (Value, bool) {
	v, ok := f.values[column]
	return v, ok
}

// Has reports whether column is set.
func (f Filters) Has(column string) bool {
	_, ok := f.values[column]
	return ok
}

// Columns returns the filter columns in order.
func (f Filters) Columns() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Entries returns the filters in order.
func (f Filters) Entries() []FilterEntry {
	out := make([]FilterEntry, len(f.keys))
	for i, k := range f.keys {
		out[i] = FilterEntry{Column: k, Value: f.values[k]}
	}
	return out
}

// With returns a copy of f with column set to v.
func (f Filters) With(column string, v Value) Filters {
	next := f.clone()
	if _, ok := next.values[column]; !ok {
		next.keys = append(next.keys, column)
	}
	next.values[column] = v
	return next
}

// Without returns a copy of f without column. f is returned unchanged when
// column is not set.
func (f Filters) Without(column string) Filters {
	if !f.Has(column) {
		return f
	}
	next := Filters{
		keys:   make([]string, 0, len(f.keys)-1),
		values: make(map[string]Value, len(f.values)-1),
	}
	for _, k := range f.keys {
		if k == column {
			continue
		}
		next.keys = append(next.keys, k)
		next.values[k] = f.values[k]
	}
	return next
}

// Equal reports whether f and o hold the same entries in the same order.
func (f Filters) Equal(o Filters) bool {
	if len(f.keys) != len(o.keys) {
		return false
	}
	for i, k := range f.keys {
		if o.keys[i] != k || !f.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

// String renders every filter as filter[<column>]=<value>, joined with ",".
func (f Filters) String() string {
	parts := make([]string, len(f.keys))
	for i, k := range f.keys {
		parts[i] = FilterEntry{Column: k, Value: f.values[k]}.Fragment()
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes f as a JSON object preserving order.
func (f Filters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (f *Filters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = Filters{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: filtersType}
	}

	var out Filters
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var v Value
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out = out.With(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

// MarshalYAML encodes f as a YAML mapping preserving order.
func (f Filters) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range f.keys {
		key := &yaml.Node{}
		if err := key.Encode(k); err != nil {
			return nil, err
		}
		val := &yaml.Node{}
		if err := val.Encode(f.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func (f Filters) clone() Filters {
	next := Filters{
		keys:   make([]string, len(f.keys), len(f.keys)+1),
		values: make(map[string]Value, len(f.values)+1),
	}
	copy(next.keys, f.keys)
	for k, v := range f.values {
		next.values[k] = v
	}
	return next
}
