// Package executor runs textual cluster-management commands (kubectl and helm
// invocations) and normalizes their outcome into a uniform Result.
//
// Commands are split with shell-word rules but never passed to a shell. Every
// invocation runs with KUBECONFIG injected into its environment and a bounded
// wall-clock timeout. Read-only commands are memoized in a bounded LRU cache
// keyed by (command, namespace); concurrent identical reads share one process.
//
// The ReleaseExecutor layers helm-specific command builders on top of the same
// execution contract.
package executor
