// Package filterschema provides urlquery validators for common filter
// column types. Values are checked with go-playground/validator tags before
// they are coerced, so a value that fails the tag keeps its raw string.
//
//	qs := urlquery.New(
//	    urlquery.WithSearchParams(params),
//	    urlquery.WithFilterSchema(urlquery.FilterSchema{
//	        "age":    filterschema.Int(),
//	        "active": filterschema.Bool(),
//	        "status": filterschema.OneOf("open", "closed"),
//	        "tags":   filterschema.List(),
//	    }),
//	)
package filterschema

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vango-dev/urlquery/pkg/urlquery"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// check reports whether raw satisfies the validator tag.
func check(raw, tag string) bool {
	if tag == "" {
		return true
	}
	return engine().Var(raw, tag) == nil
}

// Tag accepts values satisfying a validator tag, e.g. "email" or
// "min=3,max=20", and keeps them as strings.
func Tag(tag string) urlquery.Validator {
	return urlquery.ValidatorFunc(func(raw string) (any, bool) {
		if !check(raw, tag) {
			return nil, false
		}
		return raw, true
	})
}

// Coerce accepts values satisfying tag and converts them with parse.
func Coerce(tag string, parse func(string) (any, error)) urlquery.Validator {
	return urlquery.ValidatorFunc(func(raw string) (any, bool) {
		if !check(raw, tag) {
			return nil, false
		}
		v, err := parse(raw)
		if err != nil {
			return nil, false
		}
		return v, true
	})
}

// Int accepts base 10 integers. Values beyond int64 become big integers.
func Int() urlquery.Validator {
	return Coerce("required,numeric", func(raw string) (any, error) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
		b, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("filterschema: %q is not an integer", raw)
		}
		return b, nil
	})
}

// Float accepts decimal numbers.
func Float() urlquery.Validator {
	return Coerce("required,numeric", func(raw string) (any, error) {
		return strconv.ParseFloat(raw, 64)
	})
}

// Bool accepts the forms understood by strconv.ParseBool.
func Bool() urlquery.Validator {
	return Coerce("required,boolean", func(raw string) (any, error) {
		return strconv.ParseBool(raw)
	})
}

// LooseNumber converts numeric values to numbers and keeps every other
// value, including "", as a string. It always succeeds.
func LooseNumber() urlquery.Validator {
	return urlquery.ValidatorFunc(func(raw string) (any, bool) {
		if raw == "" || !check(raw, "numeric") {
			return raw, true
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, true
		}
		return raw, true
	})
}

// List splits a "," separated value into a list of strings. An empty
// value is an empty list.
func List() urlquery.Validator {
	return urlquery.ValidatorFunc(func(raw string) (any, bool) {
		if raw == "" {
			return []string{}, true
		}
		return strings.Split(raw, ","), true
	})
}

// OneOf accepts only the listed values.
func OneOf(values ...string) urlquery.Validator {
	return Tag("oneof=" + strings.Join(values, " "))
}

// Parse builds a validator from a short spec: "int", "float", "bool",
// "loose-number", "list", "string", "oneof=a b c" or "tag=<validator tag>".
func Parse(spec string) (urlquery.Validator, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(spec), "=")
	switch strings.ToLower(name) {
	case "int", "integer":
		return Int(), nil
	case "float", "number":
		return Float(), nil
	case "bool", "boolean":
		return Bool(), nil
	case "loose-number":
		return LooseNumber(), nil
	case "list", "strings":
		return List(), nil
	case "string":
		return Tag(""), nil
	case "oneof":
		if strings.TrimSpace(arg) == "" {
			return nil, fmt.Errorf("filterschema: oneof needs values")
		}
		return OneOf(strings.Fields(arg)...), nil
	case "tag":
		if arg == "" {
			return nil, fmt.Errorf("filterschema: tag needs a validator tag")
		}
		return Tag(arg), nil
	}
	return nil, fmt.Errorf("filterschema: unknown validator %q", spec)
}

// ParseSchema builds a FilterSchema from column specs.
func ParseSchema(specs map[string]string) (urlquery.FilterSchema, error) {
	schema := make(urlquery.FilterSchema, len(specs))
	for column, spec := range specs {
		v, err := Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", column, err)
		}
		schema[column] = v
	}
	return schema, nil
}
