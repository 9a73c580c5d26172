// Package middleware provides HTTP middleware for the kubectl MCP server:
// request metrics, security headers, CORS for the event stream and request
// body limits.
package middleware
