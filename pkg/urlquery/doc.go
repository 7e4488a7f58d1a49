// Package urlquery keeps UI-level query state (filters, sorts, pagination,
// included relations) and derives an API-ready query string from it.
//
// A QueryState is built once, optionally importing the current URL's search
// parameters, and then mutated through explicit operations. Every derived
// string is a memo over the sub-states, so reads always reflect the latest
// mutation.
//
//	qs := urlquery.New(
//	    urlquery.WithSortColumns("name", "createdAt"),
//	    urlquery.WithSearchParams(urlquery.MustParseQuery("?filter[status]=open&sort=-createdAt")),
//	)
//
//	qs.SetFilter("name", "jhon")
//	qs.ToggleSortActive("name")
//	qs.SetPage(2)
//
//	qs.QueryString() // ?filter[status]=open,filter[name]=jhon&sort=-createdAt,name&page=2
//
// # Wire format
//
// Filters render as filter[<column>]=<value> joined with ",". Sorts render as
// a "," separated list of active columns, descending columns prefixed with
// "-". The aggregate joins the non-empty fragments filters, sort, include,
// page, perPage and the schema fragment with "&" behind a leading "?".
//
// # Errors
//
// Operations addressing a sort column that does not exist return
// ErrSortNotFound. Moving the first sort up or the last sort down succeeds
// without changing anything. Removing an absent filter or include is a no-op.
package urlquery
