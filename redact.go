package logging

import (
	"net/http"
	"strings"
)

// sensitiveHeaders lists headers whose values must never appear verbatim
// in a record. Matching is case-insensitive; keys here are lower-case.
var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
}

func isSensitiveHeader(name string) bool {
	_, ok := sensitiveHeaders[strings.ToLower(name)]
	return ok
}

// redactHeaders flattens an http.Header into a loggable map, replacing
// sensitive values with RedactedValue. Multi-valued headers are joined
// with ", ". The input header is never modified.
func redactHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, vals := range h {
		if isSensitiveHeader(name) {
			out[name] = RedactedValue
			continue
		}
		out[name] = strings.Join(vals, ", ")
	}
	return out
}
