package logging

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// parseLevel parses a string log level into a Level.
// Returns an error if the string names no known level.
func parseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", emptyString:
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, errors.New("unknown log level: " + level)
}

// statusLevel maps an HTTP response status code to a severity:
// 5xx and above are errors, 4xx are warnings, everything else is info.
func statusLevel(status int) Level {
	switch {
	case status >= 500:
		return LevelError
	case status >= 400:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - root: the innermost error message
//
// Traversal unwraps via stdlib errors.Unwrap and guards against excessive
// depth and repeated messages to avoid cycles.
func buildErrorChain(err error) (chain []string, root string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		msg := err.Error()
		// avoid infinite loops if messages repeat due to unusual cycles
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		err = errors.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return emptyString
	}
	return strings.Join(chain, " -> ")
}

// errName reports the concrete type of an error for the record's error
// name field, without the leading pointer marker.
func errName(err error) string {
	if err == nil {
		return emptyString
	}
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if name == emptyString {
		return "error"
	}
	return name
}

// normalizeClientIP strips the IPv4-mapped IPv6 prefix so "::ffff:1.2.3.4"
// is recorded as "1.2.3.4". Anything else passes through untouched.
func normalizeClientIP(ip string) string {
	const mappedPrefix = "::ffff:"
	trimmed := strings.TrimPrefix(strings.ToLower(ip), mappedPrefix)
	if trimmed != strings.ToLower(ip) && net.ParseIP(trimmed) != nil && strings.Contains(trimmed, ".") {
		return trimmed
	}
	return ip
}

// clientIP extracts the originating client address of a request, preferring
// proxy-forwarded headers over the raw socket address.
func clientIP(r *http.Request) string {
	if r == nil {
		return emptyString
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != emptyString {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return normalizeClientIP(strings.TrimSpace(fwd))
	}
	if real := r.Header.Get("X-Real-Ip"); real != emptyString {
		return normalizeClientIP(strings.TrimSpace(real))
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return normalizeClientIP(r.RemoteAddr)
	}
	return normalizeClientIP(host)
}

// truncate bounds a captured body to max bytes, marking the cut.
func truncate(s string, max int64) string {
	if max <= 0 || int64(len(s)) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
