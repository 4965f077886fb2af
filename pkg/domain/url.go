package domain

import "strings"

// NewsURL is a canonical article URL stored without its scheme, so the
// http:// and https:// variants of the same link collapse to one record.
// The Secure flag remembers whether the link was seen over HTTPS.
type NewsURL struct {
	Canonical string // host/path?query, no scheme
	Secure    bool
}

// ParseNewsURL canonicalizes a raw link into a NewsURL.
// The scheme is stripped at construction time; everything downstream
// (storage uniqueness, dedupe, search results) works on the canonical form.
func ParseNewsURL(raw string) NewsURL {
	s := strings.TrimSpace(raw)

	var secure bool
	switch {
	case strings.HasPrefix(s, "https://"):
		secure = true
		s = strings.TrimPrefix(s, "https://")
	case strings.HasPrefix(s, "http://"):
		s = strings.TrimPrefix(s, "http://")
	case strings.HasPrefix(s, "//"):
		// Protocol-relative links inherit the page scheme; treat as insecure
		// until seen over HTTPS.
		s = strings.TrimPrefix(s, "//")
	}

	return NewsURL{Canonical: s, Secure: secure}
}

// String re-attaches the scheme for presentation and crawling.
func (u NewsURL) String() string {
	if u.Canonical == "" {
		return ""
	}
	if u.Secure {
		return "https://" + u.Canonical
	}
	return "http://" + u.Canonical
}

// IsZero reports whether the URL is unset.
func (u NewsURL) IsZero() bool {
	return u.Canonical == ""
}

// Equal compares two URLs scheme-insensitively.
func (u NewsURL) Equal(other NewsURL) bool {
	return u.Canonical == other.Canonical
}
