package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/recommendit/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

func newOllamaServer(t *testing.T) (*httptest.Server, *[]embedRequest) {
	t.Helper()
	var seen []embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		vec := []float32{float32(len(req.Input)), 1, 0}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{vec}})
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestProvider_EmbedTexts(t *testing.T) {
	srv, seen := newOllamaServer(t)

	cfg := ai.NewConfig(ai.WithBackend(ai.BackendOllama), ai.WithEmbeddingHost(srv.URL+"/v1"))
	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, "all-minilm", provider.ModelID())

	vectors, err := provider.Embedder().EmbedTexts(context.Background(), []string{"ab", "abcd"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(2), vectors[0][0])
	assert.Equal(t, float32(4), vectors[1][0])

	require.Len(t, *seen, 2)
	assert.Equal(t, "all-minilm", (*seen)[0].Model)
}

func TestEmbedder_EmbedText(t *testing.T) {
	srv, _ := newOllamaServer(t)

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
	require.NoError(t, err)

	vector, err := embedder.EmbedText(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 1, 0}, vector)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
	assert.Error(t, err)
}

func TestNewEmbedder_LeavesCallerConfigAlone(t *testing.T) {
	srv, _ := newOllamaServer(t)
	cfg := ai.NewConfig(ai.WithBackend(ai.BackendOpenAI), ai.WithEmbeddingHost(srv.URL))

	_, err := NewEmbedder(cfg)
	require.NoError(t, err)
	assert.Equal(t, ai.BackendOpenAI, cfg.Backend)
}
