package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveChatCompletionsURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain", "https://api.example.com", "https://api.example.com/v1/chat/completions"},
		{"versioned root", "https://api.example.com/v1", "https://api.example.com/v1/chat/completions"},
		{"fully qualified", "https://api.example.com/v1/chat/completions", "https://api.example.com/v1/chat/completions"},
		{"trailing slash", "https://api.example.com/", "https://api.example.com/v1/chat/completions"},
		{"versioned with slash", "https://api.example.com/v1/", "https://api.example.com/v1/chat/completions"},
		{"surrounding whitespace", "  https://api.example.com/v1  ", "https://api.example.com/v1/chat/completions"},
		{"other version segment", "https://api.example.com/v2", "https://api.example.com/v2/chat/completions"},
		{"proxy path under version", "https://proxy.example.com/openai/v1", "https://proxy.example.com/openai/v1/chat/completions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveChatCompletionsURL(tt.in))
		})
	}
}

func TestResolveChatCompletionsURL_Idempotent(t *testing.T) {
	once := ResolveChatCompletionsURL("https://api.example.com")
	assert.Equal(t, once, ResolveChatCompletionsURL(once))
}

func TestResolveTextEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000/translate", ResolveTextEndpointURL(""))
	assert.Equal(t, "http://localhost:5000/translate", ResolveTextEndpointURL("   "))
	assert.Equal(t, "http://translate.local:8080/api", ResolveTextEndpointURL("http://translate.local:8080/api"))
}
