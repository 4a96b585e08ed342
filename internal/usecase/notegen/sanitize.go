package notegen

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)

// NormalizeURL reduces a URL to a comparable form: scheme, a leading www.
// and any trailing slash are ignored when deciding whether two links are the
// same. Normalization is idempotent.
func NormalizeURL(raw string) string {
	url := strings.TrimSpace(raw)
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "www.")
	url = strings.TrimSuffix(url, "/")
	return url
}

// ExtractURLs pulls every http(s) link out of free text, in order of
// appearance.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// RemoveUserLinks drops from sources any link the user already sent in,
// compared under normalization. Citing the submitted link back at the sender
// adds nothing. Order and duplicates among the survivors are preserved.
func RemoveUserLinks(sources []string, userText string) []string {
	userLinks := make(map[string]bool)
	for _, link := range ExtractURLs(userText) {
		userLinks[NormalizeURL(link)] = true
	}

	kept := make([]string, 0, len(sources))
	for _, source := range sources {
		if userLinks[NormalizeURL(source)] {
			continue
		}
		kept = append(kept, source)
	}
	return kept
}
