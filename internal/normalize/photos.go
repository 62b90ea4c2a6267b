package normalize

import (
	"encoding/json"
	"strings"

	"restoreviews/internal/domain"
)

// NormalizePhotos converts any of the observed photo encodings (JSON string,
// array of URLs or {url} objects, single object, bare URL) into an ordered
// list. The result is never nil and never holds an empty URL.
func NormalizePhotos(raw any) (out []domain.Photo) {
	defer func() {
		if recover() != nil {
			out = []domain.Photo{}
		}
	}()

	switch t := raw.(type) {
	case []any:
		return photosFromList(t)
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return photosFromList(items)
	case []map[string]any:
		items := make([]any, len(t))
		for i, m := range t {
			items[i] = m
		}
		return photosFromList(items)
	case []domain.Photo:
		return photosFromTyped(t)
	case string:
		return photosFromString(t)
	case map[string]any:
		if u := ResolveString(t, "url", "path", "src"); u != "" {
			return []domain.Photo{{URL: u}}
		}
	}
	return []domain.Photo{}
}

// photosFromList keeps strings and objects carrying a url; the rest is dropped.
func photosFromList(items []any) []domain.Photo {
	out := make([]domain.Photo, 0, len(items))
	for _, it := range items {
		switch t := it.(type) {
		case string:
			if strings.TrimSpace(t) != "" {
				out = append(out, domain.Photo{URL: t})
			}
		case map[string]any:
			if u := ResolveString(t, "url"); u != "" {
				out = append(out, domain.Photo{URL: u})
			}
		}
	}
	return out
}

func photosFromTyped(in []domain.Photo) []domain.Photo {
	out := make([]domain.Photo, 0, len(in))
	for _, p := range in {
		if strings.TrimSpace(p.URL) != "" {
			out = append(out, p)
		}
	}
	return out
}

// photosFromString tries JSON first; text that is not JSON is a literal URL.
func photosFromString(s string) []domain.Photo {
	if strings.TrimSpace(s) == "" {
		return []domain.Photo{}
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return []domain.Photo{{URL: s}}
	}
	switch t := v.(type) {
	case []any:
		return photosFromList(t)
	case map[string]any:
		if u := ResolveString(t, "url"); u != "" {
			return []domain.Photo{{URL: u}}
		}
	}
	return []domain.Photo{}
}

// FirstPhotos runs each field through NormalizePhotos in order and returns
// the first non-empty result.
func FirstPhotos(record any, fields ...string) []domain.Photo {
	for _, f := range fields {
		if ps := NormalizePhotos(lookupAny(record, f)); len(ps) > 0 {
			return ps
		}
	}
	return []domain.Photo{}
}
