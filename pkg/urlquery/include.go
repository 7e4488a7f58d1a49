package urlquery

import "strings"

// IncludeList is the ordered list of relations requested with include=.
type IncludeList []string

// Replace returns names as the new list. Include is replaced, not merged:
// adding "a" and then "b" leaves only "b".
func (l IncludeList) Replace(names ...string) IncludeList {
	next := make(IncludeList, len(names))
	copy(next, names)
	return next
}

// Without returns the list minus every entry equal to one of names,
// keeping the order of the rest.
func (l IncludeList) Without(names ...string) IncludeList {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	next := make(IncludeList, 0, len(l))
	for _, n := range l {
		if !drop[n] {
			next = append(next, n)
		}
	}
	return next
}

// Has reports whether name is included.
func (l IncludeList) Has(name string) bool {
	for _, n := range l {
		if n == name {
			return true
		}
	}
	return false
}

// String joins the names with ",".
func (l IncludeList) String() string {
	return strings.Join(l, ",")
}
