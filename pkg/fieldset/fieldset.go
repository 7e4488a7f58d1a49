// Package fieldset turns a Go struct type into a sparse fieldset fragment,
// e.g.
//
//	type Author struct {
//	    ID   int    `json:"id"`
//	    Name string `json:"name"`
//	}
//	type Post struct {
//	    ID     int     `json:"id"`
//	    Title  string  `json:"title"`
//	    Author *Author `json:"author"`
//	}
//
//	fieldset.New(Post{}, "posts").FormatSchema()
//	// include=author&fields[posts]=id,title&fields[author]=id,name
//
// Struct, pointer to struct and slice of struct fields are relations. They
// are listed under include by their dotted path and get their own fields
// entry. Field names come from the json tag; `fieldset:"-"` skips a field.
package fieldset

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

const (
	DefaultIncludeKey = "include"
	DefaultFieldsKey  = "fields"
)

var (
	// ErrNotStruct is returned when the schema is not a struct type.
	ErrNotStruct = errors.New("fieldset: schema must be a struct")
	// ErrNoRoot is returned when the root resource name is empty.
	ErrNoRoot = errors.New("fieldset: root resource is required")
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Formatter renders a schema type as a query string fragment.
type Formatter struct {
	Schema     any
	Root       string
	IncludeKey string
	FieldsKey  string
}

// New returns a formatter with the default include and fields keys.
func New(schema any, root string) *Formatter {
	return &Formatter{Schema: schema, Root: root}
}

// WithKeys overrides the include and fields keys. Empty keys keep the
// defaults.
func (f *Formatter) WithKeys(includeKey, fieldsKey string) *Formatter {
	f.IncludeKey = includeKey
	f.FieldsKey = fieldsKey
	return f
}

type resource struct {
	path   string
	fields []string
}

// FormatSchema implements urlquery.SchemaFormatter.
func (f *Formatter) FormatSchema() (string, error) {
	if f.Root == "" {
		return "", ErrNoRoot
	}
	t := reflect.TypeOf(f.Schema)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return "", fmt.Errorf("%w, got %v", ErrNotStruct, t)
	}

	var resources []resource
	if err := walk(t, f.Root, true, &resources, map[reflect.Type]bool{}); err != nil {
		return "", err
	}

	includeKey := f.IncludeKey
	if includeKey == "" {
		includeKey = DefaultIncludeKey
	}
	fieldsKey := f.FieldsKey
	if fieldsKey == "" {
		fieldsKey = DefaultFieldsKey
	}

	var parts []string
	if len(resources) > 1 {
		includes := make([]string, 0, len(resources)-1)
		for _, r := range resources[1:] {
			includes = append(includes, r.path)
		}
		parts = append(parts, includeKey+"="+strings.Join(includes, ","))
	}
	for _, r := range resources {
		if len(r.fields) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s[%s]=%s", fieldsKey, r.path, strings.Join(r.fields, ",")))
	}
	return strings.Join(parts, "&"), nil
}

// walk appends the resource for t and then its relations depth first.
func walk(t reflect.Type, path string, root bool, out *[]resource, visiting map[reflect.Type]bool) error {
	if visiting[t] {
		return fmt.Errorf("fieldset: recursive relation %q on %v", path, t)
	}
	visiting[t] = true
	defer delete(visiting, t)

	idx := len(*out)
	*out = append(*out, resource{path: path})

	type relation struct {
		name string
		t    reflect.Type
	}
	var relations []relation

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("fieldset") == "-" {
			continue
		}
		fieldName, ok := jsonName(sf)
		if !ok {
			continue
		}
		if rt, isRel := relationType(sf.Type); isRel {
			relations = append(relations, relation{name: fieldName, t: rt})
			continue
		}
		(*out)[idx].fields = append((*out)[idx].fields, fieldName)
	}

	for _, rel := range relations {
		relPath := rel.name
		if !root {
			relPath = path + "." + rel.name
		}
		if err := walk(rel.t, relPath, false, out, visiting); err != nil {
			return err
		}
	}
	return nil
}

func jsonName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}
	return name, true
}

// relationType reports whether t is a struct-like relation and returns the
// struct type behind it.
func relationType(t reflect.Type) (reflect.Type, bool) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil, false
	}
	if t.Implements(jsonMarshalerType) || reflect.PointerTo(t).Implements(jsonMarshalerType) ||
		t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
		return nil, false
	}
	return t, true
}
