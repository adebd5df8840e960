package replicate

import (
	"sort"
	"strings"
)

// NormalizeOutput flattens a prediction output (a string, an array, nested
// arrays or objects) into a de-duplicated list of image URLs in encounter
// order. Object keys are visited in sorted order.
func NormalizeOutput(output any) []string {
	var out []string
	seen := make(map[string]struct{})
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if !isImageRef(s) {
				return
			}
			if _, dup := seen[s]; dup {
				return
			}
			seen[s] = struct{}{}
			out = append(out, s)
		case []any:
			for _, item := range t {
				walk(item)
			}
		case []string:
			for _, item := range t {
				walk(item)
			}
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(t[k])
			}
		}
	}
	walk(output)
	return out
}

func isImageRef(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "data:")
}
