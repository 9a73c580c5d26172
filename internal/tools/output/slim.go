package output

import (
	"strings"
)

// SlimResource returns a copy of obj without the excluded field paths. A list
// object is slimmed item by item. Paths use dot notation, and a "[*]" suffix
// descends into every element of an array, e.g.
// "status.conditions[*].lastTransitionTime".
func SlimResource(obj map[string]any, excludedFields []string) map[string]any {
	if obj == nil {
		return nil
	}
	if len(excludedFields) == 0 {
		excludedFields = DefaultExcludedFields()
	}

	result := deepCopyMap(obj)
	slimInPlace(result, excludedFields)
	return result
}

func slimInPlace(obj map[string]any, excludedFields []string) {
	targets := []map[string]any{obj}
	if items, ok := obj["items"].([]any); ok {
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				targets = append(targets, m)
			}
		}
	}
	for _, target := range targets {
		for _, field := range excludedFields {
			removeField(target, field)
		}
	}
}

func removeField(obj map[string]any, path string) {
	if path != "" {
		dropPath(obj, strings.Split(path, "."))
	}
}

func dropPath(obj map[string]any, parts []string) {
	if obj == nil || len(parts) == 0 {
		return
	}

	// Annotation and label keys contain dots themselves.
	if len(parts) > 1 {
		if key := strings.Join(parts, "."); hasKey(obj, key) {
			delete(obj, key)
			return
		}
	}

	head, rest := parts[0], parts[1:]
	if name, isArray := strings.CutSuffix(head, "[*]"); isArray {
		if len(rest) == 0 {
			return
		}
		elems, _ := obj[name].([]any)
		for _, elem := range elems {
			if m, ok := elem.(map[string]any); ok {
				dropPath(m, rest)
			}
		}
		return
	}

	if len(rest) == 0 {
		delete(obj, head)
		return
	}
	next, _ := obj[head].(map[string]any)
	dropPath(next, rest)
}

func hasKey(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}
	return result
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = deepCopyValue(item)
		}
		return result
	default:
		return v
	}
}
