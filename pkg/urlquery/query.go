package urlquery

import (
	"log/slog"

	"github.com/vango-dev/urlquery/pkg/reactive"
)

// QueryState holds filters, sorts, included relations and pagination, and
// derives query string fragments from them.
//
// A QueryState is not safe for concurrent use.
type QueryState struct {
	owner  *reactive.Owner
	logger *slog.Logger

	filters *reactive.Signal[Filters]
	sorts   *reactive.Signal[SortList]
	include *reactive.Signal[IncludeList]
	page    *reactive.Signal[Optional]
	perPage *reactive.Signal[Optional]

	schemaFragment string

	filtersQueryString *reactive.Memo[string]
	sortString         *reactive.Memo[string]
	sortQueryString    *reactive.Memo[string]
	includeString      *reactive.Memo[string]
	includeQueryString *reactive.Memo[string]
	pageString         *reactive.Memo[string]
	pageQueryString    *reactive.Memo[string]
	perPageString      *reactive.Memo[string]
	perPageQueryString *reactive.Memo[string]
	queryString        *reactive.Memo[string]

	onChange *reactive.Effect
}

// New builds a QueryState. When normalization is enabled and search
// parameters are supplied, filters and sorts are imported from them.
func New(opts ...Option) *QueryState {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	o := reactive.NewOwner()
	q := &QueryState{
		owner:  o,
		logger: cfg.logger,
	}

	filters := Filters{}
	sorts := NewSortList(cfg.sorts)
	if cfg.normalizeFromURL && available(cfg.searchParams) {
		n := Normalize(cfg.searchParams, sorts, cfg.filterSchema)
		filters, sorts = n.Filters, n.Sorts
		q.logNormalized(n)
		if cfg.onNormalize != nil {
			cfg.onNormalize(n)
		}
	}
	q.schemaFragment = formatSchema(cfg.schema, cfg.logger)

	q.filters = reactive.NewSignal(o, filters).WithEquals(Filters.Equal)
	q.sorts = reactive.NewSignal(o, sorts)
	q.include = reactive.NewSignal(o, IncludeList{})
	q.page = reactive.NewSignal(o, None())
	q.perPage = reactive.NewSignal(o, None())

	q.filtersQueryString = reactive.NewMemo(o, func() string {
		return q.filters.Get().String()
	})
	q.sortString = reactive.NewMemo(o, func() string {
		return q.sorts.Get().String()
	})
	q.sortQueryString = reactive.NewMemo(o, func() string {
		return fragment(ParamSort, q.sortString.Get())
	})
	q.includeString = reactive.NewMemo(o, func() string {
		return q.include.Get().String()
	})
	q.includeQueryString = reactive.NewMemo(o, func() string {
		return fragment(ParamInclude, q.includeString.Get())
	})
	q.pageString = reactive.NewMemo(o, func() string {
		return q.page.Get().String()
	})
	q.pageQueryString = reactive.NewMemo(o, func() string {
		return fragment(ParamPage, q.pageString.Get())
	})
	q.perPageString = reactive.NewMemo(o, func() string {
		return q.perPage.Get().String()
	})
	q.perPageQueryString = reactive.NewMemo(o, func() string {
		return fragment(ParamPerPage, q.perPageString.Get())
	})
	q.queryString = reactive.NewMemo(o, func() string {
		return Compose(
			q.filtersQueryString.Get(),
			q.sortQueryString.Get(),
			q.includeQueryString.Get(),
			q.pageQueryString.Get(),
			q.perPageQueryString.Get(),
			q.schemaFragment,
		)
	})

	if cfg.onChange != nil {
		q.watch(cfg.onChange)
	}
	return q
}

func (q *QueryState) watch(fn func(string)) {
	first := true
	last := ""
	q.onChange = reactive.NewEffect(q.owner, func() {
		current := q.queryString.Get()
		if first {
			first = false
			last = current
			return
		}
		if current == last {
			return
		}
		last = current
		fn(current)
	})
}

func formatSchema(f SchemaFormatter, logger *slog.Logger) string {
	if f == nil {
		return ""
	}
	fragment, err := f.FormatSchema()
	if err != nil {
		logger.Warn("schema formatter failed, fragment dropped", "error", err)
		return ""
	}
	return fragment
}

func (q *QueryState) logNormalized(n Normalized) {
	for _, column := range n.Raw {
		q.logger.Debug("filter kept as raw string", "column", column)
	}
	for _, column := range n.Unknown {
		q.logger.Debug("unknown sort column ignored", "column", column)
	}
	q.logger.Debug("normalized from url",
		"filters", n.Filters.Len(),
		"sort", n.SortParam,
		"active_sorts", len(n.Sorts.Active()))
}

// Batch runs fn and publishes its mutations as one change.
func (q *QueryState) Batch(fn func()) {
	q.owner.Batch(fn)
}

// Close stops change notifications.
func (q *QueryState) Close() {
	q.owner.Dispose()
}

// --- Filters ---

// Filters returns the current filters.
func (q *QueryState) Filters() Filters {
	return q.filters.Peek()
}

// SetFilter sets column to value, converted with ValueOf.
func (q *QueryState) SetFilter(column string, value any) {
	v := ValueOf(value)
	q.filters.Update(func(f Filters) Filters { return f.With(column, v) })
}

// RemoveFilter deletes column. Removing an absent column does nothing.
func (q *QueryState) RemoveFilter(column string) {
	q.filters.Update(func(f Filters) Filters { return f.Without(column) })
}

// FiltersQueryString returns the filters as filter[<column>]=<value>
// joined with ",".
func (q *QueryState) FiltersQueryString() string {
	return q.filtersQueryString.Get()
}

// --- Sorts ---

// Sorts returns a copy of the sort list.
func (q *QueryState) Sorts() SortList {
	return q.sorts.Peek().clone()
}

// FindSort returns the sort for column.
func (q *QueryState) FindSort(column string) (Sort, bool) {
	return q.sorts.Peek().Find(column)
}

// HasSort reports whether column is in the sort list.
func (q *QueryState) HasSort(column string) bool {
	return q.sorts.Peek().Has(column)
}

// MoveSortUp swaps column with the sort before it.
func (q *QueryState) MoveSortUp(column string) error {
	return q.updateSorts(func(l SortList) (SortList, error) { return l.MoveUp(column) })
}

// MoveSortDown swaps column with the sort after it.
func (q *QueryState) MoveSortDown(column string) error {
	return q.updateSorts(func(l SortList) (SortList, error) { return l.MoveDown(column) })
}

// ToggleSortActive flips whether column is part of the sort string.
func (q *QueryState) ToggleSortActive(column string) error {
	return q.updateSorts(func(l SortList) (SortList, error) { return l.ToggleActive(column) })
}

// SetSortActive sets whether column is part of the sort string.
func (q *QueryState) SetSortActive(column string, active bool) error {
	return q.updateSorts(func(l SortList) (SortList, error) { return l.SetActive(column, active) })
}

// ToggleSortDirection flips the direction of column.
func (q *QueryState) ToggleSortDirection(column string) error {
	return q.updateSorts(func(l SortList) (SortList, error) { return l.ToggleDirection(column) })
}

// SetSortDirection sets the direction of column.
func (q *QueryState) SetSortDirection(column string, d Direction) error {
	return q.updateSorts(func(l SortList) (SortList, error) { return l.SetDirection(column, d) })
}

// SortIsAscending reports whether column sorts ascending.
func (q *QueryState) SortIsAscending(column string) (bool, error) {
	return q.sorts.Peek().IsAscending(column)
}

// SortIsDescending reports whether column sorts descending.
func (q *QueryState) SortIsDescending(column string) (bool, error) {
	return q.sorts.Peek().IsDescending(column)
}

// SortString returns the active sorts, e.g. "-a,b".
func (q *QueryState) SortString() string {
	return q.sortString.Get()
}

// SortQueryString returns "sort=<SortString>", or "" without active sorts.
func (q *QueryState) SortQueryString() string {
	return q.sortQueryString.Get()
}

func (q *QueryState) updateSorts(fn func(SortList) (SortList, error)) error {
	next, err := fn(q.sorts.Peek())
	if err != nil {
		return err
	}
	q.sorts.Set(next)
	return nil
}

// --- Include ---

// Include returns a copy of the included relations.
func (q *QueryState) Include() IncludeList {
	cur := q.include.Peek()
	out := make(IncludeList, len(cur))
	copy(out, cur)
	return out
}

// AddInclude replaces the included relations with names. It does not merge
// with earlier calls.
func (q *QueryState) AddInclude(names ...string) {
	q.include.Update(func(l IncludeList) IncludeList { return l.Replace(names...) })
}

// RemoveInclude removes names from the included relations.
func (q *QueryState) RemoveInclude(names ...string) {
	q.include.Update(func(l IncludeList) IncludeList { return l.Without(names...) })
}

// IncludeString returns the relations joined with ",".
func (q *QueryState) IncludeString() string {
	return q.includeString.Get()
}

// IncludeQueryString returns "include=<IncludeString>", or "" when empty.
func (q *QueryState) IncludeQueryString() string {
	return q.includeQueryString.Get()
}

// --- Page ---

// Page returns the page and whether it is set.
func (q *QueryState) Page() (int, bool) {
	return q.page.Peek().Get()
}

// SetPage sets the page. Values are not range checked.
func (q *QueryState) SetPage(n int) {
	q.page.Set(Some(n))
}

// ClearPage unsets the page.
func (q *QueryState) ClearPage() {
	q.page.Set(None())
}

// PageString returns the page, or "" when unset.
func (q *QueryState) PageString() string {
	return q.pageString.Get()
}

// PageQueryString returns "page=<PageString>", or "" when unset.
func (q *QueryState) PageQueryString() string {
	return q.pageQueryString.Get()
}

// --- Per page ---

// PerPage returns the page size and whether it is set.
func (q *QueryState) PerPage() (int, bool) {
	return q.perPage.Peek().Get()
}

// SetPerPage sets the page size. Values are not range checked.
func (q *QueryState) SetPerPage(n int) {
	q.perPage.Set(Some(n))
}

// ClearPerPage unsets the page size.
func (q *QueryState) ClearPerPage() {
	q.perPage.Set(None())
}

// PerPageString returns the page size, or "" when unset.
func (q *QueryState) PerPageString() string {
	return q.perPageString.Get()
}

// PerPageQueryString returns "perPage=<PerPageString>", or "" when unset.
func (q *QueryState) PerPageQueryString() string {
	return q.perPageQueryString.Get()
}

// --- Aggregate ---

// SchemaFragment returns the fragment produced by the schema formatter.
func (q *QueryState) SchemaFragment() string {
	return q.schemaFragment
}

// QueryString returns the aggregate query string: the non-empty fragments
// joined with "&" behind "?", or "".
func (q *QueryState) QueryString() string {
	return q.queryString.Get()
}
