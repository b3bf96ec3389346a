package usecase

import (
	"errors"
	"net/url"
	"strings"
)

// ArticlePath is the route of the detail view.
const ArticlePath = "/article"

// ErrBadDeepLink marks a detail-view link without a usable original URL.
var ErrBadDeepLink = errors.New("deep link has no valid article url")

// BuildDeepLink points back into the detail view for originalURL.
// An empty base yields a relative link.
func BuildDeepLink(base, originalURL, title string) string {
	q := url.Values{}
	q.Set("url", originalURL)
	q.Set("title", title)
	return strings.TrimRight(base, "/") + ArticlePath + "?" + q.Encode()
}

// ParseDeepLink returns the original URL and title encoded by BuildDeepLink.
func ParseDeepLink(link string) (string, string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", "", errors.Join(ErrBadDeepLink, err)
	}
	original := u.Query().Get("url")
	if err := ValidateArticleURL(original); err != nil {
		return "", "", err
	}
	return original, u.Query().Get("title"), nil
}

// ValidateArticleURL accepts only absolute http(s) URLs.
func ValidateArticleURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrBadDeepLink
	}
	return nil
}
