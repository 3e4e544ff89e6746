package openapi

import (
	"fmt"
	"strings"
	"unicode"
)

// SanitizeToolName converts an operation ID or path into a tool identifier
// restricted to lowercase letters, digits and underscores. Leading digits
// and underscores are stripped so the result is a valid identifier start.
// Returns "" when nothing usable remains.
func SanitizeToolName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '-' || r == '/':
			b.WriteRune('_')
		case r == '{' || r == '}':
			// dropped entirely
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	for len(out) > 0 && (out[0] == '_' || (out[0] >= '0' && out[0] <= '9')) {
		out = out[1:]
	}
	return out
}

// deriveToolName prefers the declared operation ID and falls back to
// method_path when the document declares none or sanitization eats it whole.
func deriveToolName(operationID, method, path string) string {
	if name := SanitizeToolName(operationID); name != "" {
		return name
	}
	if name := SanitizeToolName(method + "_" + path); name != "" {
		return name
	}
	return "op"
}

// uniqueNames disambiguates tool name collisions with a numeric suffix,
// keeping the first occurrence untouched.
type uniqueNames map[string]struct{}

func (u uniqueNames) claim(name string) string {
	if _, taken := u[name]; !taken {
		u[name] = struct{}{}
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, taken := u[candidate]; !taken {
			u[candidate] = struct{}{}
			return candidate
		}
	}
}
