// Package logging provides structured logging utilities for kubectl-mcp.
//
// It centralizes attribute naming so that executors, services and the event
// bus emit records that can be correlated, using the standard library's slog.
//
// # Usage Patterns
//
//	logger.Info("creating pod",
//	    logging.Operation("pod.create"),
//	    logging.Namespace("default"),
//	    logging.ResourceName("nginx"))
//
// Command lines and API server addresses go through Command and Host, which
// truncate long input and redact IP addresses.
package logging
