package normalize_test

import (
	"testing"

	"restoreviews/internal/normalize"
)

func TestResolve_FirstPresentWins(t *testing.T) {
	rec := map[string]any{
		"comment": nil,
		"text":    "",
		"ratings": map[string]any{"food": 0.0},
	}

	if got := normalize.Resolve(rec, "comment", "text", "content"); got != "" {
		t.Fatalf("empty string should count as present, got %#v", got)
	}
	if got := normalize.Resolve(rec, "food_rating", "ratings.food"); got != 0.0 {
		t.Fatalf("nested zero should resolve, got %#v", got)
	}
	if got := normalize.Resolve(rec, "missing", "ratings.food.deeper"); got != nil {
		t.Fatalf("expected nil for missing paths, got %#v", got)
	}
}

func TestResolve_NeverPanicsOnGarbage(t *testing.T) {
	for _, rec := range []any{nil, 42, "str", []any{1, 2}, map[string]any(nil), map[string]any{"a": []any{}}} {
		if got := normalize.Resolve(rec, "a.b.c", "a"); got != nil {
			if _, isList := got.([]any); !isList {
				t.Fatalf("unexpected value for %#v: %#v", rec, got)
			}
		}
	}
}

func TestResolve_DottedKeyLiteral(t *testing.T) {
	rec := map[string]any{"ratings.food": 4.0}
	if got := normalize.Resolve(rec, "ratings.food"); got != 4.0 {
		t.Fatalf("literal dotted key should resolve, got %#v", got)
	}
}

func TestResolveString_SkipsEmptyAndNonStrings(t *testing.T) {
	rec := map[string]any{
		"user_name": "",
		"author":    map[string]any{"name": "Ольга"},
		"name":      "fallback",
	}
	if got := normalize.ResolveString(rec, "user_name", "author", "author.name", "name"); got != "Ольга" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveString_WhitespaceIsPresent(t *testing.T) {
	rec := map[string]any{"comment": "   ", "text": "later"}
	if got := normalize.ResolveString(rec, "comment", "text"); got != "   " {
		t.Fatalf("whitespace-only string should win, got %q", got)
	}
}
