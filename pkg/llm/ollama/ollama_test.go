package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwise/feedwise/pkg/types"
)

func TestProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.1", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "Rate this")

		json.NewEncoder(w).Encode(generateResponse{Response: " 8 \n"})
	}))
	defer server.Close()

	provider := NewProvider(WithBaseURL(server.URL))

	reply, err := provider.Complete(context.Background(), "Rate this content from 1-10")
	require.NoError(t, err)
	assert.Equal(t, "8", reply)
}

func TestProvider_CompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewProvider(WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestProvider_CompleteEmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "   "})
	}))
	defer server.Close()

	provider := NewProvider(WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestProvider_Identity(t *testing.T) {
	provider := NewProvider(WithModel("mistral"))

	assert.Equal(t, types.ProviderLocal, provider.Kind())
	assert.Equal(t, "ollama(mistral)", provider.Name())
}
