package fetch

import (
	"net/url"
	"strings"
)

// urlPlaceholder marks where the query-escaped target goes in a relay
// template, e.g. "https://corsproxy.io/?{url}".
const urlPlaceholder = "{url}"

// Endpoint is a public relay template that rewrites a target URL into a
// proxied fetch URL.
type Endpoint struct {
	Template string
}

// Rewrite substitutes the query-escaped target into the template. Templates
// without a placeholder get the escaped target appended.
func (e Endpoint) Rewrite(target string) string {
	escaped := url.QueryEscape(target)
	if strings.Contains(e.Template, urlPlaceholder) {
		return strings.ReplaceAll(e.Template, urlPlaceholder, escaped)
	}
	return e.Template + escaped
}
