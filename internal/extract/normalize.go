package extract

import "strings"

// NormalizeURL decodes escape sequences left over from values lifted out of
// embedded script payloads: JSON-encoded ampersands become literal "&" and
// stray backslash escapes are stripped. Ampersands must be decoded first so
// the backslash pass does not mangle the \u0026 sequence into u0026.
func NormalizeURL(s string) string {
	s = strings.ReplaceAll(s, `\u0026`, "&")
	s = strings.ReplaceAll(s, `\`, "")
	return strings.TrimSpace(s)
}
