package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pagelingo/pagelingo/internal/domain"
	"github.com/pagelingo/pagelingo/internal/observability"
)

// VisionClient translates a rendered page image through an OpenAI-style
// vision chat-completion endpoint.
type VisionClient struct {
	endpoint   string
	apiKey     string
	model      string
	targetLang string
	httpClient *http.Client
	logger     *observability.Logger
}

// chatMessage represents a chat message
type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

// contentPart represents a part of message content (text or image)
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

// imageURL represents an image URL in the message
type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// chatRequest represents the API request structure
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// chatResponse represents the API response structure
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// chatChoice represents a single completion choice
type chatChoice struct {
	Message      chatContent `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatContent struct {
	Content string `json:"content"`
}

const (
	maxCompletionTokens = 4096
	visionTemperature   = 0.3
)

// NewVisionClient creates a vision provider adapter for the given config.
func NewVisionClient(cfg domain.TranslationConfig, httpClient *http.Client, logger *observability.Logger) *VisionClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &VisionClient{
		endpoint:   ResolveChatCompletionsURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		targetLang: cfg.TargetLang,
		httpClient: httpClient,
		logger:     logger.WithComponent("vision-provider"),
	}
}

// Name identifies the backend variant.
func (c *VisionClient) Name() string { return string(domain.ProviderVision) }

// Endpoint returns the resolved request endpoint.
func (c *VisionClient) Endpoint() string { return c.endpoint }

// Translate sends the page image to the backend and returns the
// translated HTML fragment.
func (c *VisionClient) Translate(ctx context.Context, task domain.PageTask) (string, error) {
	if strings.TrimSpace(task.ImageDataURL) == "" {
		return "", Fatal(0, fmt.Sprintf("page %d: vision provider requires a rendered image", task.PageNumber), nil)
	}

	body, err := json.Marshal(c.buildRequest(task))
	if err != nil {
		return "", Retryable(0, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", Retryable(0, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", Retryable(0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := fmt.Sprintf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		if classifyStatus(resp.StatusCode) == ClassificationFatal {
			return "", Fatal(resp.StatusCode, msg, nil)
		}
		return "", Retryable(resp.StatusCode, msg, nil)
	}

	return c.parseResponse(resp.Body)
}

// buildRequest constructs the chat-completion request for one page.
func (c *VisionClient) buildRequest(task domain.PageTask) *chatRequest {
	msg := chatMessage{
		Role: "user",
		Content: []contentPart{
			{
				Type: "text",
				Text: buildTranslationPrompt(c.targetLang),
			},
			{
				Type: "image_url",
				ImageURL: &imageURL{
					URL:    task.ImageDataURL,
					Detail: "high",
				},
			},
		},
	}

	return &chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{msg},
		MaxTokens:   maxCompletionTokens,
		Temperature: visionTemperature,
	}
}

// parseResponse extracts and sanitizes the HTML from the completion body.
func (c *VisionClient) parseResponse(body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", Retryable(0, "failed to read response body", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", Retryable(0, "response is not valid JSON", err)
	}

	if len(resp.Choices) == 0 {
		return "", Retryable(0, "no choices in response", nil)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", Retryable(0, "backend rejected the page via content filter", nil)
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", Retryable(0, "empty completion body", nil)
	}

	return NormalizeHTML(content), nil
}

// buildTranslationPrompt creates the fixed instruction prompt for the
// vision backend.
func buildTranslationPrompt(targetLang string) string {
	return fmt.Sprintf(`You are a document translation expert. Convert this page image into a translated, layout-preserving HTML fragment.

OUTPUT FORMAT RULES:
- Output raw HTML ONLY. NEVER wrap your response in markdown code fences (three backticks).
- Reconstruct tables as HTML tables with the exact row and column spans of the original.
- Convert charts and diagrams into data-preserving HTML tables or structured text that keeps every value.
- Replace purely decorative imagery with the placeholder marker [decorative image].
- Translate ALL visible text into %s. Do not leave source-language text untranslated.
- Inline formatting tags (<sup>, <sub>, <b>, <i>, <strong>, <em>) must be emitted as literal tags, never entity-escaped with &lt; and &gt;.
- Do NOT emit <img> or any other image-embedding tags.
- Do NOT use math markup (MathML, LaTeX); express formulas with character entities and plain text.
- Preserve the reading order, headings, lists, and emphasis of the original page.`, targetLang)
}
