package output

import "strings"

// RedactedValue is the placeholder used for masked secret data.
const RedactedValue = "***REDACTED***"

// sensitiveAnnotations lists annotations that identify service account tokens.
var sensitiveAnnotations = map[string]bool{
	"kubernetes.io/service-account.uid":   true,
	"kubernetes.io/service-account.name":  true,
	"kubernetes.io/service-account-token": true,
}

// MaskSecrets returns a copy of obj with secret data replaced by
// RedactedValue. Lists are masked item by item. Other kinds are returned
// as an unmodified copy.
func MaskSecrets(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	result := deepCopyMap(obj)
	maskInPlace(result)
	return result
}

// ContainsSecrets reports whether obj is a Secret or a list holding one.
func ContainsSecrets(obj map[string]any) bool {
	if IsSecretResource(obj) {
		return true
	}
	items, _ := obj["items"].([]any)
	for _, item := range items {
		if m, ok := item.(map[string]any); ok && IsSecretResource(m) {
			return true
		}
	}
	return false
}

// IsSecretResource checks if a resource is a Kubernetes Secret.
func IsSecretResource(obj map[string]any) bool {
	if obj == nil {
		return false
	}
	kind, _ := obj["kind"].(string)
	return strings.EqualFold(kind, "Secret")
}

func maskInPlace(obj map[string]any) {
	if IsSecretResource(obj) {
		maskSecretData(obj)
		return
	}
	items, _ := obj["items"].([]any)
	for _, item := range items {
		if m, ok := item.(map[string]any); ok && IsSecretResource(m) {
			maskSecretData(m)
		}
	}
}

// maskSecretData masks the data and stringData fields of a Secret. The type
// field stays visible.
func maskSecretData(secret map[string]any) {
	for _, field := range []string{"data", "stringData"} {
		data, ok := secret[field].(map[string]any)
		if !ok {
			continue
		}
		masked := make(map[string]any, len(data))
		for key := range data {
			masked[key] = RedactedValue
		}
		secret[field] = masked
	}
	maskSensitiveAnnotations(secret)
}

func maskSensitiveAnnotations(obj map[string]any) {
	metadata, ok := obj["metadata"].(map[string]any)
	if !ok {
		return
	}
	annotations, ok := metadata["annotations"].(map[string]any)
	if !ok {
		return
	}
	for key := range annotations {
		if sensitiveAnnotations[key] {
			annotations[key] = RedactedValue
		}
	}
}
