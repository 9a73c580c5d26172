package logging

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Attribute keys shared by the executors, services and the event bus.
const (
	KeyOperation    = "operation"
	KeyNamespace    = "namespace"
	KeyResourceType = "resource_type"
	KeyResourceName = "resource_name"
	KeyCommand      = "command"
	KeyDuration     = "duration"
	KeyStatus       = "status"
	KeyError        = "error"
	KeyHost         = "host"
	KeyEventType    = "event_type"
	KeySubscriber   = "subscriber"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxCommandLogLength bounds how much of a command line ends up in a log record.
const MaxCommandLogLength = 256

// ipv4Regex matches IPv4 addresses for sanitization.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ipv6Regex matches IPv6 addresses for sanitization, including the
// compressed and bracketed (URL) forms.
var ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)

func Operation(op string) slog.Attr        { return slog.String(KeyOperation, op) }
func Namespace(ns string) slog.Attr        { return slog.String(KeyNamespace, ns) }
func ResourceType(kind string) slog.Attr   { return slog.String(KeyResourceType, kind) }
func ResourceName(name string) slog.Attr   { return slog.String(KeyResourceName, name) }
func Status(status string) slog.Attr       { return slog.String(KeyStatus, status) }
func Duration(d time.Duration) slog.Attr   { return slog.Duration(KeyDuration, d) }
func EventType(eventType string) slog.Attr { return slog.String(KeyEventType, eventType) }
func Subscriber(id string) slog.Attr       { return slog.String(KeySubscriber, id) }

// Command returns a slog attribute for a command line. Long commands are
// truncated to MaxCommandLogLength and IP addresses are redacted.
func Command(cmd string) slog.Attr {
	if len(cmd) > MaxCommandLogLength {
		cmd = cmd[:MaxCommandLogLength] + "..."
	}
	return slog.String(KeyCommand, redactIPs(cmd))
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses redacted.
// Use it for errors coming back from the Kubernetes API server, which often
// embed the server address.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, SanitizeHost(err.Error()))
}

// Host returns a slog attribute for a host with IP addresses sanitized.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// SanitizeHost redacts IP addresses in an address, URL or free-form message
// while keeping hostnames, so "https://10.0.0.1:6443" logs as
// "https://<redacted-ip>:6443". An empty host logs as "<empty>".
func SanitizeHost(host string) string {
	switch {
	case host == "":
		return "<empty>"
	case !strings.Contains(host, "://"):
		return redactIPs(host)
	}
	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}
	// Only the authority is rewritten; paths may legitimately contain colons.
	parsed.Host = redactIPs(parsed.Host)
	return parsed.String()
}

func redactIPs(s string) string {
	result := ipv4Regex.ReplaceAllString(s, "<redacted-ip>")
	return ipv6Regex.ReplaceAllString(result, "<redacted-ip>")
}
