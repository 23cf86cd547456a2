// Package server normalizes and validates HTTP origins for WebSocket requests
// to enforce the configured access control.
package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// normalizeOrigin reduces an origin to lowercase scheme://host form so that
// configured values and request headers compare consistently.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// originChecker builds the CheckOrigin callback for the WebSocket upgrader
// from the configured allow-list. Requests without an Origin header come from
// non-browser clients and are admitted; browser requests must match the list.
func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := false
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if strings.TrimSpace(origin) == "*" {
			allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(origin)
		if !ok {
			slog.Warn("ignoring invalid origin in configuration", "origin", origin)
			continue
		}
		allowedSet[normalized] = struct{}{}
	}

	return func(r *http.Request) bool {
		originHeader := r.Header.Get("Origin")
		if originHeader == "" || allowAll {
			return true
		}
		normalized, ok := normalizeOrigin(originHeader)
		if !ok {
			slog.Warn("blocked websocket connection with malformed origin", "origin", originHeader)
			return false
		}
		if _, exists := allowedSet[normalized]; !exists {
			slog.Warn("blocked websocket connection from disallowed origin", "origin", originHeader)
			return false
		}
		return true
	}
}
