package output

import (
	"strings"
	"unicode/utf8"
)

// TruncateItems truncates items to maxItems. A non-positive limit means
// DefaultMaxItems; limits above AbsoluteMaxItems are capped.
func TruncateItems[T any](items []T, maxItems int) ([]T, *TruncationWarning) {
	limit := EffectiveLimit(maxItems, 0)

	total := len(items)
	if total <= limit {
		return items, nil
	}
	return items[:limit], newWarning(limit, total, "items",
		"Use a label selector or a namespace to narrow the result.")
}

// TruncateText cuts text to at most maxBytes, preferring the last line break
// within the limit so tables are not cut mid-row. The cut never splits a
// UTF-8 sequence. A non-positive limit disables truncation.
func TruncateText(text string, maxBytes int) (string, *TruncationWarning) {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return text, nil
	}
	maxBytes = min(maxBytes, AbsoluteMaxOutputBytes)

	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if nl := strings.LastIndexByte(text[:cut], '\n'); nl > 0 {
		cut = nl + 1
	}

	return text[:cut], newWarning(cut, len(text), "bytes",
		"Request a narrower query or a more compact output format.")
}

// EffectiveLimit combines a per-request limit with the configured limit,
// taking the smaller one and applying AbsoluteMaxItems.
func EffectiveLimit(requestLimit, configLimit int) int {
	if requestLimit <= 0 {
		if configLimit <= 0 {
			return DefaultMaxItems
		}
		return min(configLimit, AbsoluteMaxItems)
	}

	effective := requestLimit
	if configLimit > 0 && configLimit < effective {
		effective = configLimit
	}
	return min(effective, AbsoluteMaxItems)
}
