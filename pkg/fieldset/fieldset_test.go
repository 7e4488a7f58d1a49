package fieldset

import (
	"errors"
	"testing"
	"time"

	"github.com/vango-dev/urlquery/pkg/urlquery"
)

type author struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Country *country `json:"country"`
}

type country struct {
	Code string `json:"code"`
}

type comment struct {
	ID   int    `json:"id"`
	Body string `json:"body"`
}

type post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Secret    string    `json:"-"`
	Internal  string    `fieldset:"-"`
	Author    *author   `json:"author"`
	Comments  []comment `json:"comments,omitempty"`
	hidden    string
}

type node struct {
	ID     int   `json:"id"`
	Parent *node `json:"parent"`
}

func TestFormatSchema(t *testing.T) {
	tests := []struct {
		name string
		f    *Formatter
		want string
	}{
		{
			name: "Flat",
			f:    New(comment{}, "comments"),
			want: "fields[comments]=id,body",
		},
		{
			name: "Relations",
			f:    New(post{}, "posts"),
			want: "include=author,author.country,comments&fields[posts]=id,title,created_at&fields[author]=id,name&fields[author.country]=code&fields[comments]=id,body",
		},
		{
			name: "Pointer",
			f:    New(&comment{}, "comments"),
			want: "fields[comments]=id,body",
		},
		{
			name: "CustomKeys",
			f:    New(post{}, "posts").WithKeys("with", "only"),
			want: "with=author,author.country,comments&only[posts]=id,title,created_at&only[author]=id,name&only[author.country]=code&only[comments]=id,body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.f.FormatSchema()
			if err != nil {
				t.Fatalf("FormatSchema() err = %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatSchema() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestFormatSchemaErrors(t *testing.T) {
	if _, err := New(post{}, "").FormatSchema(); !errors.Is(err, ErrNoRoot) {
		t.Errorf("empty root err = %v", err)
	}
	if _, err := New(42, "n").FormatSchema(); !errors.Is(err, ErrNotStruct) {
		t.Errorf("int schema err = %v", err)
	}
	if _, err := New(nil, "n").FormatSchema(); !errors.Is(err, ErrNotStruct) {
		t.Errorf("nil schema err = %v", err)
	}
	if _, err := New(node{}, "nodes").FormatSchema(); err == nil {
		t.Error("recursive schema should fail")
	}
}

func TestFormatterInQueryState(t *testing.T) {
	q := urlquery.New(
		urlquery.WithSchema(New(comment{}, "comments")),
		urlquery.WithSortColumns("id"),
	)
	if got, want := q.QueryString(), "?fields[comments]=id,body"; got != want {
		t.Errorf("QueryString() = %q, want %q", got, want)
	}
}
