// Package k8s builds the typed Kubernetes client and classifies the outcome
// of calls made with it.
//
// Every typed call is wrapped by Do, which returns a tagged Result: the value
// on success, an API failure when the control plane rejected the request with
// a structured status, a transport failure when the request never got a
// structured answer, or unavailable when no client is configured. Callers use
// the tag to decide whether to fall back to the textual command path.
package k8s
