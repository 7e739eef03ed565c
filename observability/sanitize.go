package observability

import (
	"fmt"
	"strings"
)

// RedactedPlaceholder replaces any value whose key looks credential-bearing.
const RedactedPlaceholder = "[REDACTED]"

const (
	// maxDetailLen bounds string values in sanitized detail maps.
	maxDetailLen = 200
	// maxQueryLen bounds recorded database query text.
	maxQueryLen = 500
	// maxStringifiedLen bounds stringified non-primitive values.
	maxStringifiedLen = 100
)

// sensitiveExact matches whole key names, case-insensitively.
var sensitiveExact = map[string]struct{}{
	"password":   {},
	"token":      {},
	"secret":     {},
	"credential": {},
	"auth":       {},
	"api_key":    {},
	"access_key": {},
}

// sensitiveSubstrings match anywhere in the key name, case-insensitively.
var sensitiveSubstrings = []string{
	"_password", "_token", "_secret", "_key", "_credential", "_auth",
}

// isSensitiveKey reports whether a detail key must never reach the log
// with its real value.
func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if _, ok := sensitiveExact[k]; ok {
		return true
	}
	for _, sub := range sensitiveSubstrings {
		if strings.Contains(k, sub) {
			return true
		}
	}
	return false
}

// isPrimitive reports whether a value passes into records as-is.
func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// truncate shortens s to at most n characters. The cut lands on a rune
// boundary so multibyte input never leaves broken UTF-8 in a record.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// stringify renders a non-primitive value best-effort, bounded to n characters.
// A value whose String/Format path panics degrades to its type name rather
// than failing the caller.
func stringify(v any, n int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = truncate(fmt.Sprintf("<%T>", v), n)
		}
	}()
	return truncate(fmt.Sprintf("%v", v), n)
}

// Sanitize applies the shared sanitizer to a detail map: sensitive keys are
// redacted, strings are bounded to 200 characters, and non-primitive values
// are stringified then bounded. This is the single choke point keeping
// credentials out of logs. The input map is not mutated.
func Sanitize(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = sanitizeValue(k, v)
	}
	return out
}

func sanitizeValue(key string, v any) any {
	if isSensitiveKey(key) {
		return RedactedPlaceholder
	}
	if s, ok := v.(string); ok {
		return truncate(s, maxDetailLen)
	}
	if isPrimitive(v) {
		return v
	}
	return stringify(v, maxDetailLen)
}
