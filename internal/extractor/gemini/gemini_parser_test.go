package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
	"sitecheck/internal/extractor"
	"sitecheck/internal/extractor/gemini"
	"sitecheck/internal/port"
)

func newGeminiTestParser(serverURL string) *gemini.Parser {
	return gemini.NewParserWithEndpoint(&config.ProviderConfig{
		APIKey:       "test-key",
		DefaultModel: "gemini-2.0-flash",
	}, serverURL)
}

func geminiSuccessResponse(text, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": finishReason,
			},
		},
	}
}

func workOrderInput() port.ParseInput {
	return port.ParseInput{
		Kind:      domain.DocumentKindWorkOrder,
		Documents: []domain.Document{{Name: "wo.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}},
		Prompt:    extractor.WorkOrderPrompt,
	}
}

func TestGeminiParser_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		contents := req["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 2)
		inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "application/pdf", inline["mime_type"])
		assert.Equal(t, extractor.WorkOrderPrompt, parts[1].(map[string]interface{})["text"])

		_ = json.NewEncoder(w).Encode(geminiSuccessResponse(`{"crew":["A"],"hoursPerCrew":[8]}`, "STOP"))
	}))
	defer server.Close()

	out, err := newGeminiTestParser(server.URL).Parse(context.Background(), workOrderInput())

	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
	assert.JSONEq(t, `{"crew":["A"],"hoursPerCrew":[8]}`, string(out.StructuredData))
}

func TestGeminiParser_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429}}`))
	}))
	defer server.Close()

	_, err := newGeminiTestParser(server.URL).Parse(context.Background(), workOrderInput())

	var rlErr *extractor.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "gemini", rlErr.Provider)
	assert.Equal(t, 60.0, rlErr.RetryAfter.Seconds())
}

func TestGeminiParser_MaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiSuccessResponse(`{"crew":`, "MAX_TOKENS"))
	}))
	defer server.Close()

	_, err := newGeminiTestParser(server.URL).Parse(context.Background(), workOrderInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_TOKENS")
}

func TestGeminiParser_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newGeminiTestParser(server.URL).Parse(context.Background(), workOrderInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
