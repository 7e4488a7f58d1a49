package urlquery

import (
	"io"
	"log/slog"
)

// Option configures a QueryState.
type Option func(*config)

type config struct {
	sorts            []SortParam
	normalizeFromURL bool
	searchParams     SearchParams
	filterSchema     FilterSchema
	schema           SchemaFormatter
	onChange         func(queryString string)
	onNormalize      func(Normalized)
	logger           *slog.Logger
}

func defaultConfig() config {
	return config{
		normalizeFromURL: true,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithSorts seeds the sort list with column/label pairs.
func WithSorts(params ...SortParam) Option {
	return func(c *config) {
		c.sorts = append(c.sorts, params...)
	}
}

// WithSortColumns seeds the sort list with columns labelled by name.
func WithSortColumns(columns ...string) Option {
	return WithSorts(Columns(columns...)...)
}

// WithNormalizeFromURL enables or disables importing the search parameters
// at construction. It is enabled by default.
func WithNormalizeFromURL(enabled bool) Option {
	return func(c *config) {
		c.normalizeFromURL = enabled
	}
}

// WithSearchParams sets the current URL's search parameters. Without a
// source, normalization is skipped; a nil Params counts as no source.
func WithSearchParams(src SearchParams) Option {
	return func(c *config) {
		c.searchParams = src
	}
}

// WithFilterSchema sets the validators consulted for filter parameters
// during normalization.
func WithFilterSchema(schema FilterSchema) Option {
	return func(c *config) {
		c.filterSchema = schema
	}
}

// WithSchema sets the formatter whose fragment is appended to the query
// string.
func WithSchema(f SchemaFormatter) Option {
	return func(c *config) {
		c.schema = f
	}
}

// WithOnChange registers fn to run after any mutation that changes the
// aggregate query string. It does not run for the initial value.
func WithOnChange(fn func(queryString string)) Option {
	return func(c *config) {
		c.onChange = fn
	}
}

// WithOnNormalize registers fn to receive the normalization result at
// construction. It is not called when normalization is skipped.
func WithOnNormalize(fn func(Normalized)) Option {
	return func(c *config) {
		c.onNormalize = fn
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
