package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelingo/pagelingo/internal/domain"
)

const testImageDataURL = "data:image/jpeg;base64,/9j/dGVzdA=="

func visionConfig(baseURL string) domain.TranslationConfig {
	return domain.TranslationConfig{
		Provider:   domain.ProviderVision,
		BaseURL:    baseURL,
		APIKey:     "sk-test-key",
		Model:      "gpt-4o",
		TargetLang: "German",
	}
}

func completionBody(content, finishReason string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]any{"content": content},
				"finish_reason": finishReason,
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestVisionClient_TranslateSuccess(t *testing.T) {
	var captured chatRequest
	var gotAuth, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("<table><tr><td>Hallo</td></tr></table>", "stop")))
	}))
	defer srv.Close()

	client := NewVisionClient(visionConfig(srv.URL), srv.Client(), nil)
	html, err := client.Translate(context.Background(), domain.PageTask{
		PageNumber:   1,
		ImageDataURL: testImageDataURL,
	})

	require.NoError(t, err)
	assert.Equal(t, "<table><tr><td>Hallo</td></tr></table>", html)
	assert.Equal(t, "Bearer sk-test-key", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)

	// Wire contract checks.
	assert.Equal(t, "gpt-4o", captured.Model)
	assert.Equal(t, maxCompletionTokens, captured.MaxTokens)
	assert.InDelta(t, visionTemperature, captured.Temperature, 0.001)
	require.Len(t, captured.Messages, 1)
	msg := captured.Messages[0]
	assert.Equal(t, "user", msg.Role)
	require.Len(t, msg.Content, 2)
	assert.Equal(t, "text", msg.Content[0].Type)
	assert.Contains(t, msg.Content[0].Text, "German")
	assert.Equal(t, "image_url", msg.Content[1].Type)
	require.NotNil(t, msg.Content[1].ImageURL)
	assert.Equal(t, testImageDataURL, msg.Content[1].ImageURL.URL)
	assert.Equal(t, "high", msg.Content[1].ImageURL.Detail)
}

func TestVisionClient_StripsMarkdownFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("```html\n<p>Hallo</p>\n```", "stop")))
	}))
	defer srv.Close()

	client := NewVisionClient(visionConfig(srv.URL), srv.Client(), nil)
	html, err := client.Translate(context.Background(), domain.PageTask{PageNumber: 1, ImageDataURL: testImageDataURL})

	require.NoError(t, err)
	assert.Equal(t, "<p>Hallo</p>", html)
}

func TestVisionClient_UnescapesInlineTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("<p>x&lt;sup&gt;17&lt;/sup&gt;</p>", "stop")))
	}))
	defer srv.Close()

	client := NewVisionClient(visionConfig(srv.URL), srv.Client(), nil)
	html, err := client.Translate(context.Background(), domain.PageTask{PageNumber: 1, ImageDataURL: testImageDataURL})

	require.NoError(t, err)
	assert.Equal(t, "<p>x<sup>17</sup></p>", html)
}

func TestVisionClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		wantFatal bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, true},
		{http.StatusNotFound, true},
		{http.StatusTooManyRequests, false},
		{http.StatusInternalServerError, false},
		{http.StatusBadGateway, false},
		{http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			client := NewVisionClient(visionConfig(srv.URL), srv.Client(), nil)
			_, err := client.Translate(context.Background(), domain.PageTask{PageNumber: 1, ImageDataURL: testImageDataURL})

			require.Error(t, err)
			assert.Equal(t, tt.wantFatal, IsFatal(err))

			var te *TranslateError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.status, te.StatusCode)
		})
	}
}

func TestVisionClient_RetryableFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-JSON body", "<html>gateway error</html>"},
		{"no choices", `{"choices":[]}`},
		{"empty completion", completionBody("", "stop")},
		{"content filter", completionBody("", "content_filter")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewVisionClient(visionConfig(srv.URL), srv.Client(), nil)
			_, err := client.Translate(context.Background(), domain.PageTask{PageNumber: 1, ImageDataURL: testImageDataURL})

			require.Error(t, err)
			assert.False(t, IsFatal(err))
		})
	}
}

func TestVisionClient_MissingImageIsFatal(t *testing.T) {
	client := NewVisionClient(visionConfig("https://api.example.com"), nil, nil)
	_, err := client.Translate(context.Background(), domain.PageTask{PageNumber: 2})

	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestVisionClient_EndpointResolution(t *testing.T) {
	client := NewVisionClient(visionConfig("https://api.example.com"), nil, nil)
	assert.Equal(t, "https://api.example.com/v1/chat/completions", client.Endpoint())
}
