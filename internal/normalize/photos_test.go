package normalize_test

import (
	"reflect"
	"testing"

	"restoreviews/internal/domain"
	"restoreviews/internal/normalize"
)

func photos(urls ...string) []domain.Photo {
	out := make([]domain.Photo, 0, len(urls))
	for _, u := range urls {
		out = append(out, domain.Photo{URL: u})
	}
	return out
}

func TestNormalizePhotos(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want []domain.Photo
	}{
		{"string list", []any{"a.jpg", "b.jpg"}, photos("a.jpg", "b.jpg")},
		{"typed string list", []string{"a.jpg", "", "b.jpg"}, photos("a.jpg", "b.jpg")},
		{"json objects", `[{"url":"a.jpg"}]`, photos("a.jpg")},
		{"json strings", `["a.jpg","b.jpg"]`, photos("a.jpg", "b.jpg")},
		{"json object", `{"url":"a.jpg"}`, photos("a.jpg")},
		{"literal url", "not json", photos("not json")},
		{"nil", nil, photos()},
		{"empty string", "", photos()},
		{"path object", map[string]any{"path": "x.jpg"}, photos("x.jpg")},
		{"src object", map[string]any{"src": "y.jpg"}, photos("y.jpg")},
		{"object without url", map[string]any{"caption": "hi"}, photos()},
		{"mixed list", []any{"a.jpg", map[string]any{"url": "b.jpg"}, map[string]any{"path": "c.jpg"}, 7, nil}, photos("a.jpg", "b.jpg")},
		{"json number", "42", photos()},
		{"number", 3.5, photos()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalize.NormalizePhotos(tc.in)
			if got == nil {
				t.Fatalf("result must never be nil")
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("NormalizePhotos(%#v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFirstPhotos_FallbackChain(t *testing.T) {
	rec := map[string]any{
		"photos":      []any{},
		"images":      "",
		"attachments": `[{"url":"receipt.png"}]`,
		"photo":       "ignored.jpg",
	}
	got := normalize.FirstPhotos(rec, "photos", "images", "attachments", "photo_urls", "photo")
	if !reflect.DeepEqual(got, photos("receipt.png")) {
		t.Fatalf("got %+v", got)
	}
}
