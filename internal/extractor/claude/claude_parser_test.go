package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
	"sitecheck/internal/extractor"
	"sitecheck/internal/extractor/claude"
	"sitecheck/internal/port"
)

func newClaudeTestParser(serverURL string) *claude.Parser {
	return claude.NewParserWithEndpoint(&config.ProviderConfig{
		APIKey:       "test-key",
		DefaultModel: "claude-sonnet-4-5-20250929",
	}, serverURL)
}

func messageResponse(text, stopReason string) map[string]interface{} {
	return map[string]interface{}{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-sonnet-4-5-20250929",
		"content":       []map[string]interface{}{{"type": "text", "text": text}},
		"stop_reason":   stopReason,
		"stop_sequence": nil,
		"usage":         map[string]interface{}{"input_tokens": 120, "output_tokens": 40},
	}
}

func photoInput() port.ParseInput {
	return port.ParseInput{
		Kind: domain.DocumentKindPhoto,
		Documents: []domain.Document{
			{Name: "site.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}},
		},
		Prompt: extractor.PhotoPrompt,
	}
}

func TestClaudeParser_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-5-20250929", req["model"])
		content := req["messages"].([]interface{})[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)
		assert.Equal(t, "image", content[0].(map[string]interface{})["type"])
		assert.Equal(t, "text", content[1].(map[string]interface{})["type"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`{"workCompleted":true,"confidence":85}`, "end_turn"))
	}))
	defer server.Close()

	out, err := newClaudeTestParser(server.URL).Parse(context.Background(), photoInput())

	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5-20250929", out.ModelUsed)
	assert.JSONEq(t, `{"workCompleted":true,"confidence":85}`, string(out.StructuredData))
}

func TestClaudeParser_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	_, err := newClaudeTestParser(server.URL).Parse(context.Background(), photoInput())

	var rlErr *extractor.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 15.0, rlErr.RetryAfter.Seconds())
}

func TestClaudeParser_MaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`{"workCompleted":`, "max_tokens"))
	}))
	defer server.Close()

	_, err := newClaudeTestParser(server.URL).Parse(context.Background(), photoInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestClaudeParser_UnsupportedContentType(t *testing.T) {
	input := photoInput()
	input.Documents[0].ContentType = "image/gif"

	_, err := newClaudeTestParser("http://127.0.0.1:1").Parse(context.Background(), input)

	assert.ErrorIs(t, err, extractor.ErrUnsupportedDocument)
}
