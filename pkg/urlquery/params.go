package urlquery

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SearchParams is a source of URL search parameters. Each calls fn for every
// key/value pair in URL order; keys may repeat.
type SearchParams interface {
	Each(fn func(key, value string))
}

// available reports whether src can supply parameters. A nil interface and
// a nil Params both mean no source.
func available(src SearchParams) bool {
	if src == nil {
		return false
	}
	if p, ok := src.(Params); ok && p == nil {
		return false
	}
	return true
}

// Param is one decoded key/value pair.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of search parameters.
type Params []Param

// Each implements SearchParams.
func (p Params) Each(fn func(key, value string)) {
	for _, kv := range p {
		fn(kv.Key, kv.Value)
	}
}

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Add appends a pair.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode renders the pairs as an escaped query string without a leading
// "?". Brackets and commas are left readable.
func (p Params) Encode() string {
	parts := make([]string, len(p))
	for i, kv := range p {
		parts[i] = escape(kv.Key) + "=" + escape(kv.Value)
	}
	return strings.Join(parts, "&")
}

var readable = strings.NewReplacer("%5B", "[", "%5D", "]", "%2C", ",")

func escape(s string) string {
	return readable.Replace(url.QueryEscape(s))
}

// ParseQuery decodes a query string into ordered pairs. raw may be a bare
// query ("a=1&b=2"), start with "?", or be a full URL or path. A
// "#fragment" is dropped. "+" decodes to a space.
func ParseQuery(raw string) (Params, error) {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	switch {
	case strings.HasPrefix(raw, "?"):
		raw = raw[1:]
	case isURL(raw):
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("urlquery: parse url: %w", err)
		}
		raw = u.RawQuery
	}
	return ParseRawQuery(raw)
}

// isURL reports whether raw is a URL or path rather than a bare query: a
// scheme separator must come before the first '?', '&' or '=', and a path
// must not have an '=' before its '?'.
func isURL(raw string) bool {
	head := raw
	if i := strings.IndexAny(raw, "?&="); i >= 0 {
		head = raw[:i]
	}
	if strings.Contains(head, "://") {
		return true
	}
	if !strings.HasPrefix(raw, "/") {
		return false
	}
	eq := strings.IndexByte(raw, '=')
	q := strings.IndexByte(raw, '?')
	return eq < 0 || (q >= 0 && q < eq)
}

// ParseRawQuery decodes the query component of a URL, such as
// http.Request.URL.RawQuery, into ordered pairs. The input is never treated
// as a URL.
func ParseRawQuery(raw string) (Params, error) {
	params := Params{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("urlquery: parse query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("urlquery: parse query value %q: %w", v, err)
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params, nil
}

// MustParseQuery is like ParseQuery but panics on malformed escapes.
func MustParseQuery(raw string) Params {
	p, err := ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// FromValues adapts url.Values. Keys are visited in sorted order because
// url.Values does not keep the original order; values of a key keep theirs.
func FromValues(values url.Values) Params {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := Params{}
	for _, k := range keys {
		for _, v := range values[k] {
			params = append(params, Param{Key: k, Value: v})
		}
	}
	return params
}
