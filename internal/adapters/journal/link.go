package journal

import (
	"regexp"
	"strings"
)

var nextLinkRe = regexp.MustCompile(`<([^>]+)>; rel="next"`)

// ParseNext extracts the rel="next" target from a Link header value.
// Returns "" when the header carries no next link.
func ParseNext(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	m := nextLinkRe.FindStringSubmatch(linkHeader)
	if m == nil {
		return ""
	}
	return m[1]
}

// FixURL repairs the malformed continuation URLs the journaling API
// occasionally emits: a stray `</events-fast/` fragment, or a path-relative
// reference that needs the events base URL prepended.
func FixURL(baseURL, url string) string {
	url = strings.TrimSpace(url)

	if _, path, ok := strings.Cut(url, "</events-fast/"); ok {
		return baseURL + "/events-fast/" + path
	}
	if !strings.HasPrefix(url, "http") {
		if strings.HasPrefix(url, "/") {
			return baseURL + url
		}
		return baseURL + "/" + url
	}
	return url
}
