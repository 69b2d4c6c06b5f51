package provider

import "strings"

// inlineTags is the allowlist of inline formatting tags that backends
// sometimes over-escape despite instructions. Only these are un-escaped.
var inlineTags = []string{"sup", "sub", "b", "i", "strong", "em"}

// NormalizeHTML cleans a backend response into a bare HTML fragment:
// strips a markdown code-fence wrapper if the backend added one, and
// un-escapes the allowlisted inline formatting tags.
func NormalizeHTML(s string) string {
	return unescapeInlineTags(stripCodeFence(s))
}

// stripCodeFence removes a wrapping markdown code fence (```html ... ```
// or ``` ... ```) that some backends emit despite being told not to.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language hint on the opening fence ("html", "xml", ...).
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || isFenceLanguage(firstLine) {
			trimmed = trimmed[idx+1:]
		}
	}

	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func isFenceLanguage(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// unescapeInlineTags converts entity-escaped inline formatting tags back
// to literal tags, for the allowlisted tag set only.
func unescapeInlineTags(s string) string {
	for _, tag := range inlineTags {
		s = strings.ReplaceAll(s, "&lt;"+tag+"&gt;", "<"+tag+">")
		s = strings.ReplaceAll(s, "&lt;/"+tag+"&gt;", "</"+tag+">")
	}
	return s
}
