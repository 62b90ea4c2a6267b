package normalize

import (
	"strings"
)

// lookupAny: safe nested lookup with dot paths on maps. An exact key match
// wins over path splitting, so keys that contain dots stay reachable.
func lookupAny(record any, path string) any {
	m, ok := record.(map[string]any)
	if !ok {
		return nil
	}
	if v, ok := m[path]; ok {
		return v
	}
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// Resolve returns the first candidate path whose value is present (non-nil).
// Zero values such as 0, false and "" count as present.
func Resolve(record any, paths ...string) any {
	for _, p := range paths {
		if v := lookupAny(record, p); v != nil {
			return v
		}
	}
	return nil
}

// ResolveString returns the first candidate holding a non-empty string.
// Whitespace-only strings count as present.
func ResolveString(record any, paths ...string) string {
	for _, p := range paths {
		if s, ok := lookupAny(record, p).(string); ok && s != "" {
			return s
		}
	}
	return ""
}
