package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var got messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, messagesPath, r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Recipe Name: Toast\n"},{"type":"text","text":"Instructions: Toast it."}]}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", "claude-test", time.Second, WithBaseURL(srv.URL))

	text, err := client.Generate(context.Background(), "bread only")
	require.NoError(t, err)
	assert.Equal(t, "Recipe Name: Toast\nInstructions: Toast it.", text)

	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, maxTokens, got.MaxTokens)
	assert.Equal(t, []Message{{Role: "user", Content: "bread only"}}, got.Messages)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", "claude-test", time.Second, WithBaseURL(srv.URL)).Generate(context.Background(), "x")
	assert.EqualError(t, err, "anthropic api error: authentication_error: invalid x-api-key")
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", "m", time.Second, WithBaseURL(srv.URL)).Generate(context.Background(), "x")
	assert.Error(t, err)
}
