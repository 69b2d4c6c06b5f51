package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/pagelingo/pagelingo/internal/domain"
	"github.com/pagelingo/pagelingo/internal/observability"
)

// NoContentHTML is the placeholder returned for pages with no
// translatable text. No network call is made for such pages.
const NoContentHTML = `<div class="no-content">[no translatable text on this page]</div>`

// TextClient translates extracted page text through a LibreTranslate-style
// endpoint. All of its failures are transient: there is no configuration
// signal worth treating as fatal from these servers.
type TextClient struct {
	endpoint   string
	apiKey     string
	targetLang string
	httpClient *http.Client
	logger     *observability.Logger
}

// textRequest is the wire format of the translation endpoint.
type textRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// textResponse covers the response shapes observed in practice: servers
// disagree on the field carrying the translation, so all three known
// variants are checked in order.
type textResponse struct {
	TranslatedText string   `json:"translatedText"`
	Text           string   `json:"text"`
	Alternatives   []string `json:"alternatives"`
}

// NewTextClient creates a text-endpoint provider adapter.
func NewTextClient(cfg domain.TranslationConfig, httpClient *http.Client, logger *observability.Logger) *TextClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &TextClient{
		endpoint:   ResolveTextEndpointURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		targetLang: cfg.TargetLang,
		httpClient: httpClient,
		logger:     logger.WithComponent("text-provider"),
	}
}

// Name identifies the backend variant.
func (c *TextClient) Name() string { return string(domain.ProviderTextEndpoint) }

// Endpoint returns the request endpoint in use.
func (c *TextClient) Endpoint() string { return c.endpoint }

// Translate posts the page text to the endpoint and wraps the translated
// string as an HTML fragment. Empty pages short-circuit to a placeholder.
func (c *TextClient) Translate(ctx context.Context, task domain.PageTask) (string, error) {
	if strings.TrimSpace(task.Text) == "" {
		return NoContentHTML, nil
	}

	body, err := json.Marshal(textRequest{
		Text:       task.Text,
		SourceLang: "auto",
		TargetLang: c.targetLang,
	})
	if err != nil {
		return "", Retryable(0, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", Retryable(0, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", Retryable(0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", Retryable(resp.StatusCode,
			fmt.Sprintf("endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Retryable(0, "failed to read response body", err)
	}

	var parsed textResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", Retryable(0, "response is not valid JSON", err)
	}

	translated := firstNonEmpty(parsed)
	if translated == "" {
		return "", Retryable(0, "invalid response format", nil)
	}

	return textToHTML(translated), nil
}

// firstNonEmpty walks the known response fields in precedence order.
func firstNonEmpty(resp textResponse) string {
	if s := strings.TrimSpace(resp.TranslatedText); s != "" {
		return s
	}
	if s := strings.TrimSpace(resp.Text); s != "" {
		return s
	}
	if len(resp.Alternatives) > 0 {
		return strings.TrimSpace(resp.Alternatives[0])
	}
	return ""
}

// textToHTML wraps translated plain text as an HTML fragment, one
// paragraph per non-empty line.
func textToHTML(text string) string {
	var b strings.Builder
	b.WriteString(`<div class="page-text">`)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	b.WriteString(`</div>`)
	return b.String()
}
