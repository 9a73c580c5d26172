// Package services implements the pod, deployment, namespace and cluster
// operations exposed to callers.
//
// Every resource operation first tries the typed Kubernetes client. When the
// control plane rejects the call with a structured error, or when no client
// is configured, the equivalent kubectl command is run instead and its result
// is returned. Transport failures are reported as plain errors. Successful
// mutations are announced on the event bus.
//
// Pod, deployment and namespace services share the ResourceService
// capability set so that dispatchers can address them by kind.
package services
