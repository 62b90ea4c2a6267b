package normalize

// envelopeKeys are tried after the caller's key when unwrapping a response.
var envelopeKeys = []string{"data", "items", "results"}

// ExtractList unwraps the response shapes the backend is known to return:
// a bare array, {key: [...]} and {key: {key: [...]}}. Non-object elements are
// dropped. The result is never nil.
func ExtractList(payload any, key string) []map[string]any {
	return extractList(payload, key, 0)
}

func extractList(payload any, key string, depth int) []map[string]any {
	if depth > 4 {
		return []map[string]any{}
	}
	switch t := payload.(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, it := range t {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		for _, k := range append([]string{key}, envelopeKeys...) {
			if v, ok := t[k]; ok && v != nil {
				return extractList(v, key, depth+1)
			}
		}
	}
	return []map[string]any{}
}
