package urlquery

// Snapshot is a serializable view of a QueryState.
type Snapshot struct {
	Filters Filters     `json:"filters" yaml:"filters"`
	Sorts   SortList    `json:"sorts" yaml:"sorts"`
	Include IncludeList `json:"include" yaml:"include"`
	Page    Optional    `json:"page" yaml:"page"`
	PerPage Optional    `json:"perPage" yaml:"perPage"`
	Strings Strings     `json:"strings" yaml:"strings"`
	Query   string      `json:"queryString" yaml:"queryString"`
}

// Strings holds every derived fragment.
type Strings struct {
	FiltersQueryString string `json:"filtersQueryString" yaml:"filtersQueryString"`
	SortString         string `json:"sortString" yaml:"sortString"`
	SortQueryString    string `json:"sortQueryString" yaml:"sortQueryString"`
	IncludeString      string `json:"includeString" yaml:"includeString"`
	IncludeQueryString string `json:"includeQueryString" yaml:"includeQueryString"`
	PageString         string `json:"pageString" yaml:"pageString"`
	PageQueryString    string `json:"pageQueryString" yaml:"pageQueryString"`
	PerPageString      string `json:"perPageString" yaml:"perPageString"`
	PerPageQueryString string `json:"perPageQueryString" yaml:"perPageQueryString"`
	SchemaFragment     string `json:"schemaFragment,omitempty" yaml:"schemaFragment,omitempty"`
}

// Snapshot captures the current state and derived strings.
func (q *QueryState) Snapshot() Snapshot {
	return Snapshot{
		Filters: q.Filters(),
		Sorts:   q.Sorts(),
		Include: q.Include(),
		Page:    q.page.Peek(),
		PerPage: q.perPage.Peek(),
		Strings: Strings{
			FiltersQueryString: q.FiltersQueryString(),
			SortString:         q.SortString(),
			SortQueryString:    q.SortQueryString(),
			IncludeString:      q.IncludeString(),
			IncludeQueryString: q.IncludeQueryString(),
			PageString:         q.PageString(),
			PageQueryString:    q.PageQueryString(),
			PerPageString:      q.PerPageString(),
			PerPageQueryString: q.PerPageQueryString(),
			SchemaFragment:     q.SchemaFragment(),
		},
		Query: q.QueryString(),
	}
}

// SearchParams returns the state as URL search parameters that normalize
// back to the same filters and active sorts.
func (q *QueryState) SearchParams() Params {
	params := Params{}
	for _, e := range q.Filters().Entries() {
		params = params.Add("filter["+e.Column+"]", e.Value.Format())
	}
	if s := q.SortString(); s != "" {
		params = params.Add(ParamSort, s)
	}
	if s := q.IncludeString(); s != "" {
		params = params.Add(ParamInclude, s)
	}
	if s := q.PageString(); s != "" {
		params = params.Add(ParamPage, s)
	}
	if s := q.PerPageString(); s != "" {
		params = params.Add(ParamPerPage, s)
	}
	return params
}
