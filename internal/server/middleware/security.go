package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// DefaultMaxRequestBytes bounds MCP request bodies on the HTTP transports.
const DefaultMaxRequestBytes = 5 << 20

// SecurityHeaders adds the standard hardening headers to every response.
// HSTS is sent for TLS requests, and for every request when enableHSTS is set
// (TLS terminated by a reverse proxy).
func SecurityHeaders(enableHSTS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")

			if r.TLS != nil || enableHSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORS lets browser dashboards in allowedOrigins read the event stream. With
// no allowed origins no CORS headers are written and preflights fall through.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !slices.Contains(allowedOrigins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID, Mcp-Session-Id")
			h.Set("Access-Control-Expose-Headers", "Mcp-Session-Id")
			h.Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ValidateAllowedOrigins parses a comma separated origin list and normalizes
// each entry to scheme://host[:port].
func ValidateAllowedOrigins(origins string) ([]string, error) {
	if strings.TrimSpace(origins) == "" {
		return nil, nil
	}

	var validated []string
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}

		u, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("origin %q must use http or https", origin)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("origin %q must include a host", origin)
		}
		if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			return nil, fmt.Errorf("origin %q must not include a path, query or fragment", origin)
		}

		validated = append(validated, u.Scheme+"://"+u.Host)
	}
	return validated, nil
}

// MaxRequestSize caps request bodies at maxBytes. A non-positive limit
// disables the check. Oversized bodies fail to read, and requests announcing
// an oversized Content-Length are refused with 413 up front.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
