package urlquery

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValueOfFormat(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name string
		in   any
		kind Kind
		want string
	}{
		{"BigInt", huge, KindBigInt, "123456789012345678901234567890"},
		{"Uint64Overflow", uint64(math.MaxUint64), KindBigInt, "18446744073709551615"},
		{"True", true, KindBool, "1"},
		{"False", false, KindBool, "0"},
		{"Int", 30, KindNumber, "30"},
		{"NegativeInt", int64(-7), KindNumber, "-7"},
		{"Float", 1.5, KindNumber, "1.5"},
		{"WholeFloat", 2.0, KindNumber, "2"},
		{"String", "jhon", KindString, "jhon"},
		{"EmptyString", "", KindString, ""},
		{"Strings", []string{"x", "y"}, KindSequence, "x,y"},
		{"Ints", []int{1, 2, 3}, KindSequence, "1,2,3"},
		{"MixedSequence", []any{"a", 1, true}, KindSequence, "a,1,true"},
		{"EmptySequence", []string{}, KindSequence, ""},
		{"Map", map[string]int{"min": 1}, KindStructural, `{"min":1}`},
		{"Struct", struct {
			From string `json:"from"`
		}{"2024"}, KindStructural, `{"from":"2024"}`},
		{"Nil", nil, KindStructural, "null"},
		{"NilElements", []any{"a", nil, "b", nil}, KindSequence, "a,,b,"},
		{"UnescapedHTML", map[string]string{"q": "a&b<c>"}, KindStructural, `{"q":"a&b<c>"}`},
		{"StructuralElement", []any{map[string]string{"q": "&"}}, KindSequence, `{"q":"&"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValueOf(tt.in)
			if v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", v.Kind(), tt.kind)
			}
			if got := v.Format(); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueOfPassesValueThrough(t *testing.T) {
	v := Bool(true)
	if got := ValueOf(v); !got.Equal(v) {
		t.Errorf("ValueOf(Value) = %v, want %v", got, v)
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
		out  string
	}{
		{"Int", `30`, KindNumber, `30`},
		{"Float", `1.25`, KindNumber, `1.25`},
		{"Huge", `123456789012345678901234567890`, KindBigInt, `123456789012345678901234567890`},
		{"Bool", `true`, KindBool, `true`},
		{"String", `"a"`, KindString, `"a"`},
		{"Array", `["x",2]`, KindSequence, `["x",2]`},
		{"Object", `{"a":1}`, KindStructural, `{"a":1}`},
		{"Null", `null`, KindStructural, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", v.Kind(), tt.kind)
			}
			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tt.out {
				t.Errorf("Marshal = %s, want %s", out, tt.out)
			}
		})
	}
}

func TestFiltersSetRemove(t *testing.T) {
	var f Filters
	f = f.With("age", Int(30))
	f = f.With("flag", Bool(true))
	f = f.With("tags", ValueOf([]string{"x", "y"}))

	if got, want := f.String(), "filter[age]=30,filter[flag]=1,filter[tags]=x,y"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	f2 := f.With("age", Int(31))
	if got, want := f2.Columns(), []string{"age", "flag", "tags"}; !equalStrings(got, want) {
		t.Errorf("overwrite moved column: %v", got)
	}
	if v, _ := f.Get("age"); v.Format() != "30" {
		t.Errorf("With mutated receiver: age = %v", v)
	}

	f3 := f2.Without("flag")
	if got, want := f3.String(), "filter[age]=31,filter[tags]=x,y"; got != want {
		t.Errorf("after Without String() = %q, want %q", got, want)
	}
	if f3.Has("flag") {
		t.Error("flag still present")
	}

	f4 := f3.Without("missing")
	if !f4.Equal(f3) {
		t.Error("Without(missing) changed filters")
	}
}

func TestFiltersEmpty(t *testing.T) {
	var f Filters
	if f.String() != "" || f.Len() != 0 {
		t.Errorf("zero Filters = %q (%d)", f.String(), f.Len())
	}
	if _, ok := f.Get("x"); ok {
		t.Error("Get on zero Filters returned ok")
	}
}

func TestFiltersJSONOrder(t *testing.T) {
	f := NewFilters(
		FilterEntry{Column: "z", Value: String("last-alpha")},
		FilterEntry{Column: "a", Value: Int(1)},
	)

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"z":"last-alpha","a":1}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	var back Filters
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(f) {
		t.Errorf("round trip = %s, want %s", back.String(), f.String())
	}

	if err := json.Unmarshal([]byte(`[1]`), &back); err == nil {
		t.Error("Unmarshal of array should fail")
	}
}

func TestFiltersYAMLOrder(t *testing.T) {
	f := NewFilters(
		FilterEntry{Column: "z", Value: String("b")},
		FilterEntry{Column: "a", Value: Bool(true)},
	)
	out, err := yaml.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(out), "z: b\na: true\n"; got != want {
		t.Errorf("yaml = %q, want %q", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
