package urlquery

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSortNotFound is returned by sort operations addressing a column that is
// not in the sort list.
var ErrSortNotFound = errors.New("urlquery: sort column not found")

// Direction is a sort direction.
type Direction uint8

const (
	// Ascending sorts low to high. It has no wire prefix.
	Ascending Direction = iota
	// Descending sorts high to low. It is written with a "-" prefix.
	Descending
)

// descPrefix marks a descending column in a sort string.
const descPrefix = "-"

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Prefix returns the wire prefix for d.
func (d Direction) Prefix() string {
	if d == Descending {
		return descPrefix
	}
	return ""
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts "asc", "desc", "", "-" and their upper-case forms.
func (d *Direction) UnmarshalText(text []byte) error {
	dir, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = dir
	return nil
}

// ParseDirection parses "asc"/"ascending"/"" as Ascending and
// "desc"/"descending"/"-" as Descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "-", "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("urlquery: invalid sort direction %q", s)
}

// Sort is a named, directional sort key that is only written to the sort
// string while Active.
type Sort struct {
	Column    string    `json:"column" yaml:"column"`
	Label     string    `json:"label" yaml:"label"`
	Direction Direction `json:"direction" yaml:"direction"`
	Active    bool      `json:"active" yaml:"active"`
}

// Token returns the column with its direction prefix.
func (s Sort) Token() string {
	return s.Direction.Prefix() + s.Column
}

// SortParam seeds a sort. An empty Label defaults to Column.
type SortParam struct {
	Column string `json:"column" yaml:"column" mapstructure:"column"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// Columns returns one SortParam per column, labelled by the column name.
func Columns(columns ...string) []SortParam {
	params := make([]SortParam, len(columns))
	for i, c := range columns {
		params[i] = SortParam{Column: c}
	}
	return params
}

// SortList is an ordered list of sorts with unique columns. Order decides
// the order of the sort string. Mutating methods return a new list and
// leave the receiver untouched.
type SortList []Sort

// NewSortList creates one ascending, inactive sort per param, in order.
// Params repeating an earlier column are skipped.
func NewSortList(params []SortParam) SortList {
	if len(params) == 0 {
		return SortList{}
	}
	list := make(SortList, 0, len(params))
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p.Column] {
			continue
		}
		seen[p.Column] = true
		label := p.Label
		if label == "" {
			label = p.Column
		}
		list = append(list, Sort{Column: p.Column, Label: label, Direction: Ascending})
	}
	return list
}

// Index returns the position of column, or -1.
func (l SortList) Index(column string) int {
	for i, s := range l {
		if s.Column == column {
			return i
		}
	}
	return -1
}

// Find returns the sort for column.
func (l SortList) Find(column string) (Sort, bool) {
	if i := l.Index(column); i >= 0 {
		return l[i], true
	}
	return Sort{}, false
}

// Has reports whether column is in the list.
func (l SortList) Has(column string) bool {
	return l.Index(column) >= 0
}

// MoveUp swaps column with its predecessor. Moving the first sort up
// returns an unchanged copy.
func (l SortList) MoveUp(column string) (SortList, error) {
	i := l.Index(column)
	if i < 0 {
		return l, ErrSortNotFound
	}
	next := l.clone()
	if i > 0 {
		next[i-1], next[i] = next[i], next[i-1]
	}
	return next, nil
}

// MoveDown swaps column with its successor. Moving the last sort down
// returns an unchanged copy.
func (l SortList) MoveDown(column string) (SortList, error) {
	i := l.Index(column)
	if i < 0 {
		return l, ErrSortNotFound
	}
	next := l.clone()
	if i < len(next)-1 {
		next[i], next[i+1] = next[i+1], next[i]
	}
	return next, nil
}

// ToggleActive flips whether column is written to the sort string.
func (l SortList) ToggleActive(column string) (SortList, error) {
	return l.update(column, func(s *Sort) { s.Active = !s.Active })
}

// SetActive sets whether column is written to the sort string.
func (l SortList) SetActive(column string, active bool) (SortList, error) {
	return l.update(column, func(s *Sort) { s.Active = active })
}

// ToggleDirection flips the direction of column.
func (l SortList) ToggleDirection(column string) (SortList, error) {
	return l.update(column, func(s *Sort) { s.Direction = s.Direction.Toggle() })
}

// SetDirection sets the direction of column.
func (l SortList) SetDirection(column string, d Direction) (SortList, error) {
	return l.update(column, func(s *Sort) { s.Direction = d })
}

// IsAscending reports whether column sorts ascending.
func (l SortList) IsAscending(column string) (bool, error) {
	s, ok := l.Find(column)
	if !ok {
		return false, ErrSortNotFound
	}
	return s.Direction == Ascending, nil
}

// IsDescending reports whether column sorts descending.
func (l SortList) IsDescending(column string) (bool, error) {
	s, ok := l.Find(column)
	if !ok {
		return false, ErrSortNotFound
	}
	return s.Direction == Descending, nil
}

// Active returns the active sorts in list order.
func (l SortList) Active() SortList {
	out := SortList{}
	for _, s := range l {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// String renders the active sorts as a "," separated token list, e.g.
// "-a,b".
func (l SortList) String() string {
	var b strings.Builder
	first := true
	for _, s := range l {
		if !s.Active {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(s.Token())
	}
	return b.String()
}

// SortToken is one parsed entry of a sort string.
type SortToken struct {
	Column    string
	Direction Direction
}

// ParseSortTokens splits a sort string on ",". A leading "-" marks a
// descending column.
func ParseSortTokens(raw string) []SortToken {
	parts := strings.Split(raw, ",")
	tokens := make([]SortToken, len(parts))
	for i, p := range parts {
		if col, ok := strings.CutPrefix(p, descPrefix); ok {
			tokens[i] = SortToken{Column: col, Direction: Descending}
			continue
		}
		tokens[i] = SortToken{Column: p, Direction: Ascending}
	}
	return tokens
}

// Reconcile applies tokens to the list: every token naming a known column
// activates it with the token's direction, and those columns move to the
// front in token order. Other sorts keep their relative order behind them.
// Unknown columns are ignored. When a column repeats, its first position
// and last direction win. The second result lists the ignored columns.
func (l SortList) Reconcile(tokens []SortToken) (SortList, []string) {
	next := l.clone()
	rank := make(map[string]int, len(tokens))
	var unknown []string

	for _, t := range tokens {
		i := next.Index(t.Column)
		if i < 0 {
			if t.Column != "" {
				unknown = append(unknown, t.Column)
			}
			continue
		}
		next[i].Active = true
		next[i].Direction = t.Direction
		if _, seen := rank[t.Column]; !seen {
			rank[t.Column] = len(rank)
		}
	}

	sort.SliceStable(next, func(a, b int) bool {
		ra, okA := rank[next[a].Column]
		rb, okB := rank[next[b].Column]
		switch {
		case okA && okB:
			return ra < rb
		case okA:
			return true
		default:
			return false
		}
	})
	return next, unknown
}

func (l SortList) update(column string, fn func(*Sort)) (SortList, error) {
	i := l.Index(column)
	if i < 0 {
		return l, ErrSortNotFound
	}
	next := l.clone()
	fn(&next[i])
	return next, nil
}

func (l SortList) clone() SortList {
	next := make(SortList, len(l))
	copy(next, l)
	return next
}
