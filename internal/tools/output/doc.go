// Package output shapes tool responses before they reach the client.
//
// Command output and typed results can be large and can carry secret
// material. The package provides:
//
//   - Truncation of item lists and command output with a warning that tells
//     the caller how much was dropped.
//   - Slim output: verbose fields such as managedFields and the
//     last-applied-configuration annotation are removed from manifests.
//   - Secret masking: data and stringData of Secret manifests, including the
//     items of a List, are replaced with "***REDACTED***".
//
// Structured command output (kubectl -o json or -o yaml) is parsed, shaped
// and re-encoded in its original format. Anything else passes through
// untouched apart from truncation:
//
//	p := output.NewProcessor(output.DefaultConfig())
//	text, warning := p.Text(res.Output)
package output
