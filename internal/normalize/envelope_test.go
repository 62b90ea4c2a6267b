package normalize_test

import (
	"encoding/json"
	"testing"

	"restoreviews/internal/normalize"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func TestExtractList_Shapes(t *testing.T) {
	cases := map[string]int{
		`[{"id":1},{"id":2}]`:                   2,
		`{"reviews":[{"id":1}]}`:                1,
		`{"reviews":{"reviews":[{"id":1},{}]}}`: 2,
		`{"data":[{"id":1}]}`:                   1,
		`{"reviews":[1,"x",{"id":1}]}`:          1,
		`{"other":[{"id":1}]}`:                  0,
		`"nope"`:                                0,
		`null`:                                  0,
	}
	for in, want := range cases {
		got := normalize.ExtractList(decode(t, in), "reviews")
		if got == nil || len(got) != want {
			t.Fatalf("ExtractList(%s) = %v, want %d items", in, got, want)
		}
	}
}
