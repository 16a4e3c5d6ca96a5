// Package content cleans user-supplied text before it is stored.
package content

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from profile and model text.
type Sanitizer struct {
	plain *bluemonday.Policy
	rich  *bluemonday.Policy
}

// NewSanitizer builds the two policies. Plain removes every tag; rich keeps a
// small formatting subset and https links for model descriptions.
func NewSanitizer() *Sanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements("p", "br", "ul", "ol", "li", "strong", "em", "code", "pre", "blockquote")
	rich.AllowAttrs("href").OnElements("a")
	rich.AllowRelativeURLs(false)
	rich.AllowURLSchemes("https")
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)

	return &Sanitizer{plain: bluemonday.StrictPolicy(), rich: rich}
}

// Plain returns s with all markup removed and surrounding space trimmed.
func (s *Sanitizer) Plain(v string) string {
	return strings.TrimSpace(s.plain.Sanitize(v))
}

// Rich returns s with only formatting markup kept.
func (s *Sanitizer) Rich(v string) string {
	return strings.TrimSpace(s.rich.Sanitize(v))
}

// ValidAssetURL reports whether v is empty or an absolute http(s) URL.
func ValidAssetURL(v string) bool {
	if v == "" {
		return true
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
