package urlquery

import "regexp"

var filterKey = regexp.MustCompile(`^filter\[(.+)\]$`)

// FilterColumn returns the column of a filter[<column>] key.
func FilterColumn(key string) (string, bool) {
	m := filterKey.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Normalized is the state imported from URL search parameters.
type Normalized struct {
	// Filters holds every filter[<column>] parameter, replacing any prior
	// filters.
	Filters Filters

	// Sorts is the input sort list reconciled with the sort parameter.
	Sorts SortList

	// Raw lists filter columns whose validator rejected the value, which
	// were kept as strings.
	Raw []string

	// Unknown lists sort tokens naming columns absent from the sort list.
	Unknown []string

	// SortParam reports whether a sort parameter was present.
	SortParam bool
}

// Normalize imports search parameters into filters and sorts.
//
// Every filter[<column>] key is stored, coerced by the schema's validator
// for that column when it accepts the value. The first "sort" key is split
// into tokens: known columns become active with the token's direction and
// move to the front in token order, unknown columns are dropped. Without a
// sort key the list is returned as is.
func Normalize(src SearchParams, sorts SortList, schema FilterSchema) Normalized {
	out := Normalized{Sorts: sorts}

	var sortRaw string
	src.Each(func(key, value string) {
		if column, ok := FilterColumn(key); ok {
			v, validated := schema.parse(column, value)
			if !validated && schema[column] != nil {
				out.Raw = append(out.Raw, column)
			}
			out.Filters = out.Filters.With(column, v)
			return
		}
		if key == ParamSort && !out.SortParam {
			out.SortParam = true
			sortRaw = value
		}
	})

	if out.SortParam {
		out.Sorts, out.Unknown = sorts.Reconcile(ParseSortTokens(sortRaw))
	}
	return out
}
