package output

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/goccy/go-yaml"
)

// Processor applies a Config to tool responses.
type Processor struct {
	config *Config
}

// NewProcessor creates a Processor. A nil config means DefaultConfig.
func NewProcessor(config *Config) *Processor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Processor{config: config.Validate()}
}

// Config returns the validated configuration.
func (p *Processor) Config() *Config {
	return p.config
}

// Object slims and masks a single manifest according to the configuration.
// The input is not modified.
func (p *Processor) Object(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	result := deepCopyMap(obj)
	p.shape(result)
	return result
}

// Document shapes structured command output. JSON and single-document YAML
// manifests are decoded, slimmed and masked, then re-encoded in the same
// format. Text that is not a manifest is returned unchanged.
func (p *Processor) Document(text string) string {
	if !p.config.SlimOutput && !p.config.MaskSecrets {
		return text
	}

	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "{"):
		return p.jsonDocument(text, trimmed)
	case strings.HasPrefix(trimmed, "apiVersion:") || strings.HasPrefix(trimmed, "kind:"):
		return p.yamlDocument(text, trimmed)
	default:
		return text
	}
}

// Text shapes command output with Document and then truncates it to
// MaxOutputBytes.
func (p *Processor) Text(text string) (string, *TruncationWarning) {
	return TruncateText(p.Document(text), p.config.MaxOutputBytes)
}

func (p *Processor) shape(obj map[string]any) {
	if p.config.SlimOutput {
		slimInPlace(obj, p.config.ExcludedFields)
	}
	if p.config.MaskSecrets {
		maskInPlace(obj)
	}
}

func (p *Processor) jsonDocument(original, trimmed string) string {
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || dec.More() {
		return original
	}
	if _, ok := obj["kind"]; !ok {
		return original
	}
	p.shape(obj)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(obj); err != nil {
		return original
	}
	return buf.String()
}

func (p *Processor) yamlDocument(original, trimmed string) string {
	// Re-encoding would drop every document after the first.
	if strings.Contains(trimmed, "\n---") {
		return original
	}

	var obj map[string]any
	if err := yaml.Unmarshal([]byte(trimmed), &obj); err != nil {
		return original
	}
	if _, ok := obj["kind"]; !ok {
		return original
	}
	p.shape(obj)

	out, err := yaml.Marshal(obj)
	if err != nil {
		return original
	}
	return string(out)
}
