package resource

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// arrayWildcard matches any element of an array field, e.g. "containers[*].name".
	arrayWildcard = "[*]"

	maxFilterCriteria  = 50
	maxPathDepth       = 20
	maxFilterValueSize = 1024
)

// Filter holds client-side match criteria for listed items. Keys are dotted
// paths into the item ("status", "labels.app") and values the expected
// values. All criteria must match.
type Filter map[string]any

// Validate enforces the bounds on filter size and path shape.
func (f Filter) Validate() error {
	if len(f) > maxFilterCriteria {
		return fmt.Errorf("too many filter criteria: %d (maximum allowed: %d)", len(f), maxFilterCriteria)
	}
	for path, value := range f {
		if path == "" {
			return fmt.Errorf("filter path cannot be empty")
		}
		if strings.Contains(path, "..") {
			return fmt.Errorf("filter path contains invalid pattern '..': %q", path)
		}
		if depth := strings.Count(path, "."); depth > maxPathDepth {
			return fmt.Errorf("filter path too deep: %q has depth %d (maximum allowed: %d)", path, depth, maxPathDepth)
		}
		if s, ok := value.(string); ok && len(s) > maxFilterValueSize {
			return fmt.Errorf("filter value too large: %d bytes (maximum allowed: %d)", len(s), maxFilterValueSize)
		}
	}
	return nil
}

// Apply returns the items matching every criterion.
func (f Filter) Apply(items []map[string]any) []map[string]any {
	if len(f) == 0 {
		return items
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if f.matches(item) {
			out = append(out, item)
		}
	}
	return out
}

func (f Filter) matches(item map[string]any) bool {
	for path, expected := range f {
		if !matchesPath(item, path, expected) {
			return false
		}
	}
	return true
}

// toMaps converts typed service items to generic objects using their JSON
// field names, so filters address the same keys callers see.
func toMaps(items any) ([]map[string]any, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return out, nil
}

func matchesPath(obj map[string]any, path string, expected any) bool {
	head, rest, hasWildcard := strings.Cut(path, arrayWildcard)
	if !hasWildcard {
		value, found := lookup(obj, path)
		return found && valuesMatch(value, expected)
	}

	value, found := lookup(obj, head)
	if !found {
		return false
	}
	elems, ok := value.([]any)
	if !ok {
		return false
	}

	rest = strings.TrimPrefix(rest, ".")
	for _, elem := range elems {
		if rest == "" {
			if valuesMatch(elem, expected) {
				return true
			}
			continue
		}
		if m, ok := elem.(map[string]any); ok && matchesPath(m, rest, expected) {
			return true
		}
	}
	return false
}

// lookup resolves a dotted path. Keys containing dots, such as
// "app.kubernetes.io/name", are tried whole before being split.
func lookup(obj map[string]any, path string) (any, bool) {
	if v, ok := obj[path]; ok {
		return v, true
	}
	key, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	for {
		if next, ok := obj[key].(map[string]any); ok {
			if v, ok := lookup(next, rest); ok {
				return v, true
			}
		}
		var more bool
		var part string
		part, rest, more = strings.Cut(rest, ".")
		if !more {
			return nil, false
		}
		key += "." + part
	}
}

func valuesMatch(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	if want, ok := expected.(map[string]any); ok {
		got, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range want {
			if !valuesMatch(got[k], v) {
				return false
			}
		}
		return true
	}

	// Numbers decode as float64 on both sides; everything else compares by
	// its printed form.
	return fmt.Sprint(actual) == fmt.Sprint(expected)
}
