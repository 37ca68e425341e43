// Package policy filters URLs against a static set of disallowed path
// prefixes, mirroring the target site's robots.txt rules.
package policy

import (
	"net/url"
	"strings"
)

// DefaultDisallowedPrefixes are the target site's robots.txt Disallow
// rules for the paths this scraper could plausibly reach.
var DefaultDisallowedPrefixes = []string{
	"/my/en/cms/",
	"/my/en/search",
	"/my/en/news/search",
	"/my/en/news/sp/search",
}

// Policy maps a URL to allowed/disallowed by path prefix. It is pure and
// total: malformed URLs are treated as their parsed path, empty if
// unparseable, and an empty path is always allowed.
type Policy struct {
	prefixes []string
}

// New creates a Policy from an ordered prefix list. A nil or empty list
// falls back to DefaultDisallowedPrefixes.
func New(prefixes []string) *Policy {
	if len(prefixes) == 0 {
		prefixes = DefaultDisallowedPrefixes
	}
	p := &Policy{prefixes: make([]string, len(prefixes))}
	copy(p.prefixes, prefixes)
	return p
}

// Allowed reports whether the URL's path avoids every disallowed prefix.
func (p *Policy) Allowed(rawURL string) bool {
	var path string
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Prefixes returns a copy of the disallowed prefix list.
func (p *Policy) Prefixes() []string {
	out := make([]string, len(p.prefixes))
	copy(out, p.prefixes)
	return out
}
