package output

import "fmt"

// Default and absolute limits for response shaping.
const (
	// DefaultMaxItems is the default number of list items returned.
	DefaultMaxItems = 100

	// AbsoluteMaxItems caps MaxItems whatever the caller asks for.
	AbsoluteMaxItems = 1000

	// DefaultMaxOutputBytes is the default size limit for command output (512KB).
	DefaultMaxOutputBytes = 512 * 1024

	// AbsoluteMaxOutputBytes caps MaxOutputBytes (2MB).
	AbsoluteMaxOutputBytes = 2 * 1024 * 1024
)

// Config holds configuration for output processing.
type Config struct {
	// MaxItems limits the number of items of a list response.
	MaxItems int `json:"maxItems" yaml:"maxItems"`

	// MaxOutputBytes limits the size of command output.
	MaxOutputBytes int `json:"maxOutputBytes" yaml:"maxOutputBytes"`

	// SlimOutput enables removal of ExcludedFields from manifests.
	SlimOutput bool `json:"slimOutput" yaml:"slimOutput"`

	// MaskSecrets replaces secret data with RedactedValue.
	MaskSecrets bool `json:"maskSecrets" yaml:"maskSecrets"`

	// ExcludedFields lists dotted paths removed in slim mode. "[*]" applies
	// the rest of the path to every element of an array.
	ExcludedFields []string `json:"excludedFields,omitempty" yaml:"excludedFields,omitempty"`
}

// DefaultConfig returns a Config with slim output and secret masking on.
func DefaultConfig() *Config {
	return &Config{
		MaxItems:       DefaultMaxItems,
		MaxOutputBytes: DefaultMaxOutputBytes,
		SlimOutput:     true,
		MaskSecrets:    true,
		ExcludedFields: DefaultExcludedFields(),
	}
}

// DefaultExcludedFields returns the fields removed in slim mode.
func DefaultExcludedFields() []string {
	return []string{
		"metadata.managedFields",
		"metadata.annotations.kubectl.kubernetes.io/last-applied-configuration",
		"status.conditions[*].lastProbeTime",
		"status.conditions[*].lastHeartbeatTime",
		"metadata.selfLink",
	}
}

// Validate returns a copy with missing limits defaulted and oversized limits
// capped.
func (c *Config) Validate() *Config {
	validated := *c

	if validated.MaxItems <= 0 {
		validated.MaxItems = DefaultMaxItems
	}
	if validated.MaxOutputBytes <= 0 {
		validated.MaxOutputBytes = DefaultMaxOutputBytes
	}
	validated.MaxItems = min(validated.MaxItems, AbsoluteMaxItems)
	validated.MaxOutputBytes = min(validated.MaxOutputBytes, AbsoluteMaxOutputBytes)

	if validated.SlimOutput && len(validated.ExcludedFields) == 0 {
		validated.ExcludedFields = DefaultExcludedFields()
	}
	return &validated
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.ExcludedFields != nil {
		clone.ExcludedFields = append([]string(nil), c.ExcludedFields...)
	}
	return &clone
}

// TruncationWarning describes what a truncation dropped.
type TruncationWarning struct {
	// Shown is the number of items or bytes returned.
	Shown int `json:"shown"`

	// Total is the number of items or bytes before truncation.
	Total int `json:"total"`

	// Unit is "items" or "bytes".
	Unit string `json:"unit"`

	// Message is a human-readable warning.
	Message string `json:"message"`
}

func newWarning(shown, total int, unit, hint string) *TruncationWarning {
	return &TruncationWarning{
		Shown:   shown,
		Total:   total,
		Unit:    unit,
		Message: fmt.Sprintf("Output truncated. Showing %d of %d %s. %s", shown, total, unit, hint),
	}
}
