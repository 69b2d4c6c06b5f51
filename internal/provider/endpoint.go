package provider

import (
	"regexp"
	"strings"
)

const (
	completionsPath = "/chat/completions"

	// defaultTextEndpoint is the well-known local address of a
	// LibreTranslate-style server, used when no URL is configured.
	defaultTextEndpoint = "http://localhost:5000/translate"
)

var versionSegment = regexp.MustCompile(`/v\d+$`)

// ResolveChatCompletionsURL normalizes a user-entered base URL into the
// chat-completions endpoint. Users supply anything from a bare domain to
// the fully qualified endpoint; all three resolve to the same URL:
//
//	https://api.example.com                      -> .../v1/chat/completions
//	https://api.example.com/v1                   -> .../v1/chat/completions
//	https://api.example.com/v1/chat/completions  -> unchanged
func ResolveChatCompletionsURL(baseURL string) string {
	url := strings.TrimRight(strings.TrimSpace(baseURL), "/")

	switch {
	case strings.HasSuffix(url, completionsPath):
		return url
	case versionSegment.MatchString(url):
		return url + completionsPath
	default:
		return url + "/v1" + completionsPath
	}
}

// ResolveTextEndpointURL returns the configured text-endpoint URL
// verbatim, or the local default when unset.
func ResolveTextEndpointURL(baseURL string) string {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		return defaultTextEndpoint
	}
	return url
}
