package urlquery

import "strings"

// Parameter names of the query string groups.
const (
	ParamFilter  = "filter"
	ParamSort    = "sort"
	ParamInclude = "include"
	ParamPage    = "page"
	ParamPerPage = "perPage"
)

// fragment returns key=value, or "" when value is empty.
func fragment(key, value string) string {
	if value == "" {
		return ""
	}
	return key + "=" + value
}

// Compose joins the non-empty fragments with "&" behind a "?". It returns ""
// when every fragment is empty.
func Compose(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}
