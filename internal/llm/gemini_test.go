package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/config"
)

func TestGeminiClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "classify this", req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.SystemInstruction)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"category\":\"VPN\"}"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(config.LLMConfig{APIKey: "k", Model: "gemini-test", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "system", "classify this")
	require.NoError(t, err)
	assert.Equal(t, `{"category":"VPN"}`, out)
}

func TestGeminiClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewGeminiClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "", "x")
	assert.Error(t, err)
}

func TestNewCompleter(t *testing.T) {
	c, err := NewCompleter(config.LLMConfig{Provider: "none"}, nil)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCompleter(config.LLMConfig{Provider: "openai"}, nil)
	assert.Error(t, err, "model is required")

	_, err = NewCompleter(config.LLMConfig{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
