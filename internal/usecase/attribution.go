package usecase

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"FeedRewriter/internal/domain"
)

// Attribution decides when a rewritten story must cite its origin.
type Attribution struct {
	keywords   *regexp.Regexp
	alwaysCite []string
}

// NewAttribution compiles the keyword list into a whole-word, case-insensitive matcher.
// Multi-word keywords match across any run of whitespace.
func NewAttribution(keywords, alwaysCiteDomains []string) Attribution {
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		words := strings.Fields(kw)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		parts = append(parts, strings.Join(words, `\s+`))
	}

	a := Attribution{alwaysCite: alwaysCiteDomains}
	if len(parts) > 0 {
		a.keywords = regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
	}
	return a
}

// Required reports whether body quotes someone or link comes from an always-cite domain.
func (a Attribution) Required(body, link string) bool {
	if a.keywords != nil && a.keywords.MatchString(body) {
		return true
	}
	host := domain.HostOf(link)
	for _, d := range a.alwaysCite {
		if domain.HostMatches(host, d) {
			return true
		}
	}
	return false
}

func attributionBlock(originalURL string) string {
	host := domain.HostOf(originalURL)
	if host == "" {
		host = originalURL
	}
	return fmt.Sprintf("%s\n<p>Originally reported by <a href=\"%s\">%s</a>.</p>\n%s",
		domain.AttributionOpen, html.EscapeString(originalURL), html.EscapeString(host), domain.AttributionClose)
}

func sourceLinkBlock(originalURL string) string {
	return fmt.Sprintf("%s\n<p><a href=\"%s\">Read the original story</a></p>\n%s",
		domain.SourceLinkOpen, html.EscapeString(originalURL), domain.SourceLinkClose)
}
