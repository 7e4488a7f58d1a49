package urlquery

// Validator parses a raw URL filter value. It returns the coerced value and
// true on success, or false to keep the raw string.
type Validator interface {
	Validate(raw string) (any, bool)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(raw string) (any, bool)

// Validate implements Validator.
func (f ValidatorFunc) Validate(raw string) (any, bool) {
	return f(raw)
}

// FilterSchema maps filter columns to the validator used when importing
// them from the URL. Columns without a validator keep their raw string.
type FilterSchema map[string]Validator

// parse returns the validated value for column, or the raw string.
func (s FilterSchema) parse(column, raw string) (Value, bool) {
	if v, ok := s[column]; ok && v != nil {
		if parsed, ok := v.Validate(raw); ok {
			return ValueOf(parsed), true
		}
	}
	return String(raw), false
}

// SchemaFormatter renders an externally defined schema as an opaque query
// string fragment, such as "include=author&fields[posts]=id,title". It is
// invoked once when a QueryState is built.
type SchemaFormatter interface {
	FormatSchema() (string, error)
}

// SchemaFormatterFunc adapts a function to SchemaFormatter.
type SchemaFormatterFunc func() (string, error)

// FormatSchema implements SchemaFormatter.
func (f SchemaFormatterFunc) FormatSchema() (string, error) {
	return f()
}

// StaticFragment is a SchemaFormatter returning a fixed fragment.
type StaticFragment string

// FormatSchema implements SchemaFormatter.
func (s StaticFragment) FormatSchema() (string, error) {
	return string(s), nil
}
