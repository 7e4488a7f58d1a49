package urlquery

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func TestQueryStateDefaults(t *testing.T) {
	q := New()

	if got := q.QueryString(); got != "" {
		t.Errorf("QueryString() = %q, want empty", got)
	}
	if q.Filters().Len() != 0 || len(q.Sorts()) != 0 || len(q.Include()) != 0 {
		t.Error("expected empty sub-states")
	}
	if _, ok := q.Page(); ok {
		t.Error("page set by default")
	}
	if _, ok := q.PerPage(); ok {
		t.Error("perPage set by default")
	}
}

func TestQueryStateSorts(t *testing.T) {
	q := New(WithSortColumns("asc", "desc"))

	if !q.HasSort("desc") || q.HasSort("not-found") {
		t.Error("HasSort mismatch")
	}

	if err := q.ToggleSortActive("asc"); err != nil {
		t.Fatal(err)
	}
	if err := q.ToggleSortActive("desc"); err != nil {
		t.Fatal(err)
	}
	if got := q.SortString(); got != "asc,desc" {
		t.Errorf("SortString() = %q, want asc,desc", got)
	}
	if got := q.SortQueryString(); got != "sort=asc,desc" {
		t.Errorf("SortQueryString() = %q", got)
	}

	if err := q.ToggleSortDirection("desc"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := q.SortIsDescending("desc"); !ok {
		t.Error("desc not descending")
	}
	if ok, _ := q.SortIsAscending("asc"); !ok {
		t.Error("asc not ascending")
	}

	if err := q.MoveSortUp("desc"); err != nil {
		t.Fatal(err)
	}
	if got := q.SortString(); got != "-desc,asc" {
		t.Errorf("after MoveSortUp SortString() = %q", got)
	}
	if err := q.MoveSortUp("desc"); err != nil {
		t.Errorf("MoveSortUp on first = %v, want nil", err)
	}
	if err := q.MoveSortDown("desc"); err != nil {
		t.Fatal(err)
	}
	if got := q.SortString(); got != "asc,-desc" {
		t.Errorf("after MoveSortDown SortString() = %q", got)
	}

	if err := q.SetSortActive("asc", false); err != nil {
		t.Fatal(err)
	}
	if err := q.SetSortDirection("desc", Ascending); err != nil {
		t.Fatal(err)
	}
	if got := q.SortString(); got != "desc" {
		t.Errorf("SortString() = %q, want desc", got)
	}

	before := q.Sorts()
	for name, err := range map[string]error{
		"MoveSortUp":          q.MoveSortUp("x"),
		"MoveSortDown":        q.MoveSortDown("x"),
		"ToggleSortActive":    q.ToggleSortActive("x"),
		"ToggleSortDirection": q.ToggleSortDirection("x"),
	} {
		if !errors.Is(err, ErrSortNotFound) {
			t.Errorf("%s err = %v, want ErrSortNotFound", name, err)
		}
	}
	if !reflect.DeepEqual(q.Sorts(), before) {
		t.Error("not-found operations changed state")
	}
}

func TestQueryStateSortsCopy(t *testing.T) {
	q := New(WithSortColumns("a"))
	s := q.Sorts()
	s[0].Active = true
	if q.SortString() != "" {
		t.Error("mutating the returned list changed state")
	}
}

func TestQueryStateFilters(t *testing.T) {
	q := New()

	q.SetFilter("age", 30)
	if !strings.Contains(q.FiltersQueryString(), "filter[age]=30") {
		t.Errorf("FiltersQueryString() = %q", q.FiltersQueryString())
	}
	q.SetFilter("flag", true)
	q.SetFilter("tags", []string{"x", "y"})
	if got, want := q.FiltersQueryString(), "filter[age]=30,filter[flag]=1,filter[tags]=x,y"; got != want {
		t.Errorf("FiltersQueryString() = %q, want %q", got, want)
	}

	q.RemoveFilter("flag")
	q.RemoveFilter("missing")
	if got, want := q.FiltersQueryString(), "filter[age]=30,filter[tags]=x,y"; got != want {
		t.Errorf("after remove = %q, want %q", got, want)
	}
}

func TestQueryStateInclude(t *testing.T) {
	t.Run("AddReplaces", func(t *testing.T) {
		q := New()
		q.AddInclude("a")
		q.AddInclude("b")
		if got := q.Include(); !reflect.DeepEqual(got, IncludeList{"b"}) {
			t.Errorf("Include() = %v, want [b]", got)
		}
	})

	tests := []struct {
		name    string
		initial []string
		remove  []string
		want    string
	}{
		{"RemoveOne", []string{"author", "comments"}, []string{"author"}, "comments"},
		{"RemoveAll", []string{"author", "comments"}, []string{"author", "comments"}, ""},
		{"RemoveMissing", []string{"author"}, []string{"tags"}, "author"},
		{"KeepOrder", []string{"a", "b", "c", "d"}, []string{"b"}, "a,c,d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			q.AddInclude(tt.initial...)
			q.RemoveInclude(tt.remove...)
			if got := q.IncludeString(); got != tt.want {
				t.Errorf("IncludeString() = %q, want %q", got, tt.want)
			}
			wantQS := ""
			if tt.want != "" {
				wantQS = "include=" + tt.want
			}
			if got := q.IncludeQueryString(); got != wantQS {
				t.Errorf("IncludeQueryString() = %q, want %q", got, wantQS)
			}
		})
	}
}

func TestQueryStatePagination(t *testing.T) {
	tests := []struct {
		n      int
		str    string
		pageQS string
	}{
		{1, "1", "page=1"},
		{5, "5", "page=5"},
		{0, "", ""},
		{-3, "-3", "page=-3"},
	}
	for _, tt := range tests {
		q := New()
		q.SetPage(tt.n)
		q.SetPerPage(tt.n)
		if got := q.PageString(); got != tt.str {
			t.Errorf("PageString(%d) = %q, want %q", tt.n, got, tt.str)
		}
		if got := q.PageQueryString(); got != tt.pageQS {
			t.Errorf("PageQueryString(%d) = %q, want %q", tt.n, got, tt.pageQS)
		}
		if got, want := q.PerPageQueryString(), strings.Replace(tt.pageQS, "page", "perPage", 1); got != want {
			t.Errorf("PerPageQueryString(%d) = %q, want %q", tt.n, got, want)
		}
		if n, ok := q.Page(); !ok || n != tt.n {
			t.Errorf("Page() = %d, %v", n, ok)
		}
	}

	q := New()
	q.SetPage(2)
	q.ClearPage()
	q.SetPerPage(25)
	q.ClearPerPage()
	if _, ok := q.Page(); ok {
		t.Error("ClearPage left page set")
	}
	if q.PageString() != "" || q.PerPageString() != "" {
		t.Error("cleared values still render")
	}
}

func TestQueryStringComposition(t *testing.T) {
	groups := []string{"filter", "sort", "include", "page", "perPage"}
	parts := map[string]string{
		"filter":  "filter[name]=jhon",
		"sort":    "sort=name",
		"include": "include=author",
		"page":    "page=2",
		"perPage": "perPage=25",
	}

	for mask := 0; mask < 1<<len(groups); mask++ {
		var used, want []string
		for i, g := range groups {
			if mask&(1<<i) != 0 {
				used = append(used, g)
				want = append(want, parts[g])
			}
		}
		expected := ""
		if len(want) > 0 {
			expected = "?" + strings.Join(want, "&")
		}

		t.Run(strings.Join(used, ","), func(t *testing.T) {
			q := New(WithSortColumns("name"))
			for _, g := range used {
				switch g {
				case "filter":
					q.SetFilter("name", "jhon")
				case "sort":
					q.ToggleSortActive("name")
				case "include":
					q.AddInclude("author")
				case "page":
					q.SetPage(2)
				case "perPage":
					q.SetPerPage(25)
				}
			}
			if got := q.QueryString(); got != expected {
				t.Errorf("QueryString() = %q, want %q", got, expected)
			}
		})
	}
}

func TestQueryStateSchemaFragment(t *testing.T) {
	q := New(WithSchema(StaticFragment("fields[posts]=id,title")))
	if got := q.QueryString(); got != "?fields[posts]=id,title" {
		t.Errorf("QueryString() = %q", got)
	}
	q.SetPage(3)
	if got := q.QueryString(); got != "?page=3&fields[posts]=id,title" {
		t.Errorf("QueryString() = %q", got)
	}

	var logs bytes.Buffer
	failing := SchemaFormatterFunc(func() (string, error) { return "", errors.New("boom") })
	q = New(WithSchema(failing), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	if q.SchemaFragment() != "" || q.QueryString() != "" {
		t.Error("failed formatter should contribute nothing")
	}
	if !strings.Contains(logs.String(), "schema formatter failed") {
		t.Errorf("missing warning, logs = %q", logs.String())
	}
}

func TestQueryStateNormalization(t *testing.T) {
	src := MustParseQuery("?filter[name]=jhon&sort=-b,a,zzz")

	var seen Normalized
	calls := 0
	q := New(WithSortColumns("a", "b", "c"), WithSearchParams(src), WithOnNormalize(func(n Normalized) {
		calls++
		seen = n
	}))
	if calls != 1 || !seen.SortParam || !reflect.DeepEqual(seen.Unknown, []string{"zzz"}) {
		t.Errorf("OnNormalize calls = %d, result = %+v", calls, seen)
	}
	if got := columnsOf(q.Sorts()); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("order = %v", got)
	}
	if got, want := q.QueryString(), "?filter[name]=jhon&sort=-b,a"; got != want {
		t.Errorf("QueryString() = %q, want %q", got, want)
	}

	off := New(WithSortColumns("a", "b", "c"), WithSearchParams(src), WithNormalizeFromURL(false),
		WithOnNormalize(func(Normalized) { t.Error("OnNormalize called while disabled") }))
	if off.QueryString() != "" || off.Filters().Len() != 0 {
		t.Errorf("normalization ran while disabled: %q", off.QueryString())
	}

	none := New(WithSortColumns("a"))
	if none.QueryString() != "" {
		t.Error("no source should leave state untouched")
	}

	var nilParams Params
	New(WithSortColumns("a"), WithSearchParams(nilParams),
		WithOnNormalize(func(Normalized) { t.Error("OnNormalize called for nil Params") }))

	empty := 0
	New(WithSortColumns("a"), WithSearchParams(Params{}), WithOnNormalize(func(Normalized) { empty++ }))
	if empty != 1 {
		t.Errorf("OnNormalize calls for empty Params = %d, want 1", empty)
	}
}

func TestQueryStateRoundTrip(t *testing.T) {
	q := New(WithSortColumns("a", "b", "c", "d"))
	q.SetFilter("name", "jhon")
	q.SetFilter("tags", []string{"x", "y"})
	q.ToggleSortActive("c")
	q.ToggleSortDirection("c")
	q.ToggleSortActive("a")
	q.MoveSortUp("c")
	q.MoveSortUp("c")

	again := New(WithSortColumns("a", "b", "c", "d"), WithSearchParams(q.SearchParams()))

	if got, want := again.FiltersQueryString(), q.FiltersQueryString(); got != want {
		t.Errorf("filters = %q, want %q", got, want)
	}
	if got, want := again.SortString(), q.SortString(); got != want {
		t.Errorf("sorts = %q, want %q", got, want)
	}
	if !reflect.DeepEqual(again.Sorts().Active(), q.Sorts().Active()) {
		t.Errorf("active sorts = %+v, want %+v", again.Sorts().Active(), q.Sorts().Active())
	}
}

func TestQueryStateOnChange(t *testing.T) {
	var seen []string
	q := New(WithSortColumns("a"), WithOnChange(func(s string) { seen = append(seen, s) }))

	q.SetPage(1)
	q.SetPage(1)
	q.RemoveFilter("missing")
	q.Batch(func() {
		q.SetFilter("x", 1)
		q.ToggleSortActive("a")
	})

	want := []string{"?page=1", "?filter[x]=1&sort=a&page=1"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %q, want %q", seen, want)
	}

	q.Close()
	q.SetPage(2)
	if len(seen) != 2 {
		t.Errorf("callback ran after Close: %q", seen)
	}
	if q.QueryString() != "?filter[x]=1&sort=a&page=2" {
		t.Errorf("state not updated after Close: %q", q.QueryString())
	}
}

func TestSnapshotJSON(t *testing.T) {
	q := New(WithSortColumns("name"))
	q.SetFilter("name", "jhon")
	q.ToggleSortActive("name")
	q.AddInclude("author")
	q.SetPage(2)

	data, err := json.Marshal(q.Snapshot())
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["queryString"] != "?filter[name]=jhon&sort=name&include=author&page=2" {
		t.Errorf("queryString = %v", got["queryString"])
	}
	if got["perPage"] != nil {
		t.Errorf("perPage = %v, want null", got["perPage"])
	}
	if got["page"] != float64(2) {
		t.Errorf("page = %v", got["page"])
	}
	sorts := got["sorts"].([]any)
	first := sorts[0].(map[string]any)
	if first["direction"] != "asc" || first["active"] != true {
		t.Errorf("sort = %v", first)
	}
}
