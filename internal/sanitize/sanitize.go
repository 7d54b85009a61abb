// Package sanitize neutralizes untrusted text before it is logged, mailed or
// rendered back into HTML.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MaxInputLength caps sanitized text fields, counted in characters.
const MaxInputLength = 1000

var (
	tagPattern          = regexp.MustCompile(`<[^>]*>`)
	scriptURIPattern    = regexp.MustCompile(`(?i)javascript:`)
	dataHTMLPattern     = regexp.MustCompile(`(?i)data:text/html`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
	angleBracketPattern = regexp.MustCompile(`[<>]`)

	entityDecoder = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#x27;", "'",
		"&#x2F;", "/",
	)

	allowedEmailTags = []string{"h2", "p", "br", "strong", "em", "ul", "ol", "li"}
	emailPolicy      = newEmailPolicy()
)

func newEmailPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedEmailTags...)
	return p
}

// Input strips every HTML tag and script-triggering substring from s and
// returns plain text of at most MaxInputLength characters.
func Input(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = entityDecoder.Replace(out)

	// Removing one match can splice together another ("javajavascript:script:",
	// "java<script:"), so every removal repeats until the text is stable.
	for {
		next := tagPattern.ReplaceAllString(out, "")
		next = angleBracketPattern.ReplaceAllString(next, "")
		next = scriptURIPattern.ReplaceAllString(next, "")
		next = dataHTMLPattern.ReplaceAllString(next, "")
		next = eventHandlerPattern.ReplaceAllString(next, "")
		if next == out {
			break
		}
		out = next
	}

	out = strings.TrimSpace(out)
	return truncate(out, MaxInputLength)
}

// Email normalizes an address for validation and delivery.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HTML keeps only the small set of formatting tags allowed in outgoing mail
// and drops every attribute.
func HTML(s string) string {
	return emailPolicy.Sanitize(s)
}

// URL returns u when it is an absolute http, https or mailto URL and "#"
// otherwise.
func URL(u string) string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return "#"
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		if parsed.Host == "" {
			return "#"
		}
	case "mailto":
		if parsed.Opaque == "" {
			return "#"
		}
	default:
		return "#"
	}
	return parsed.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
