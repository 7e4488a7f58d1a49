package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantMsg    string
		wantCat    Category
		wantStatus int
	}{
		{
			name:       "config error",
			code:       "Q001",
			wantMsg:    "Config file unreadable",
			wantCat:    CategoryConfig,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "query error",
			code:       "Q010",
			wantMsg:    "Malformed query string",
			wantCat:    CategoryQuery,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			code:       "Q022",
			wantMsg:    "Sort column not found",
			wantCat:    CategoryRequest,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown error code",
			code:       "Q999",
			wantMsg:    "Unknown error",
			wantCat:    "",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.HTTPStatus() != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", err.HTTPStatus(), tt.wantStatus)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "sorts")
	if err.Message != `flag "sorts" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want message only", err.Error())
	}
}

func TestQueryError_Error(t *testing.T) {
	err := New("Q020")
	if got, want := err.Error(), "Q020: Malformed request body"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(errors.New("unexpected EOF"))
	if got, want := err.Error(), "Q020: Malformed request body: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestQueryError_Builders(t *testing.T) {
	err := New("Q010").
		WithInput("a=%zz", 2).
		WithDetail("custom detail").
		WithSuggestion("encode % as %25")

	if err.Input != "a=%zz" || err.Offset != 2 {
		t.Errorf("Input/Offset = %q/%d", err.Input, err.Offset)
	}
	if err.Detail != "custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "encode % as %25" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "Q001") != nil {
		t.Error("FromError(nil) should return nil")
	}

	cause := errors.New("boom")
	err := FromError(cause, "Q001")
	if err.Code != "Q001" {
		t.Errorf("Code = %q", err.Code)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	orig := New("Q022")
	if FromError(orig, "Q001") != orig {
		t.Error("FromError should return an existing QueryError unchanged")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("Q010").WithInput("a=%zz", 2).WithSuggestion("encode % as %25")
	out := err.Format()

	wants := []string{
		"ERROR Q010: Malformed query string",
		"    a=%zz\n      ^\n",
		"Hint: encode % as %25",
		"invalid percent-encoded sequence",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("Q010").WithInput("a=%zz", 2)
	if got, want := err.FormatCompact(), "Q010: Malformed query string (at offset 2)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
	if got, want := New("Q020").FormatCompact(), "Q020: Malformed request body"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("Q010").WithInput("a=%zz", 0).Wrap(errors.New("bad escape"))
	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatal(mErr)
	}

	var got map[string]any
	if uErr := json.Unmarshal(data, &got); uErr != nil {
		t.Fatal(uErr)
	}
	if got["code"] != "Q010" || got["category"] != "query" || got["cause"] != "bad escape" {
		t.Errorf("unexpected JSON %s", data)
	}
	if got["offset"] != float64(0) {
		t.Errorf("offset = %v, want 0", got["offset"])
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) != len(registry) {
		t.Errorf("GetAllCodes() returned %d codes, want %d", len(codes), len(registry))
	}
	for _, code := range codes {
		if !strings.HasPrefix(code, "Q") {
			t.Errorf("code %q should start with Q", code)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("Q900", ErrorTemplate{Category: CategoryQuery, Message: "custom", Status: http.StatusTeapot})
	defer delete(registry, "Q900")

	tmpl, ok := GetTemplate("Q900")
	if !ok || tmpl.Message != "custom" {
		t.Fatalf("GetTemplate(Q900) = %+v, %v", tmpl, ok)
	}
	if New("Q900").HTTPStatus() != http.StatusTeapot {
		t.Error("registered status not used")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  int
	}{
		{"", 10, 0},
		{"short", 10, 1},
		{"this sentence is longer than ten", 10, 4},
	}
	for _, tt := range tests {
		if got := wrapText(tt.text, tt.width); len(got) != tt.want {
			t.Errorf("wrapText(%q, %d) = %q, want %d lines", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestMalformedQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"filter[name]=%zz", 13},
		{"a=%41&b=%4", 8},
		{"a=%", 2},
		{"a=b", -1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := MalformedQuery(tt.raw, errors.New("bad escape"))
			if err.Code != "Q010" {
				t.Errorf("Code = %q", err.Code)
			}
			if err.Offset != tt.want {
				t.Errorf("Offset = %d, want %d", err.Offset, tt.want)
			}
		})
	}
}
