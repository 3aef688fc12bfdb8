package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, BackendOpenAI, cfg.Backend)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host and model", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithAPIKey("secret"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "secret", cfg.APIKey)
	})

	t.Run("with ollama backend", func(t *testing.T) {
		cfg := NewConfig(WithBackend(BackendOllama))
		assert.Equal(t, BackendOllama, cfg.Backend)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds /v1 for openai", func(t *testing.T) {
		cfg := &Config{Backend: BackendOpenAI, EmbeddingHost: "http://localhost:11434/"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("keeps existing /v1", func(t *testing.T) {
		cfg := &Config{Backend: BackendOpenAI, EmbeddingHost: "http://localhost:11434/v1"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("strips /v1 for ollama", func(t *testing.T) {
		cfg := &Config{Backend: BackendOllama, EmbeddingHost: "http://localhost:11434/v1/"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434", cfg.EmbeddingHost)
	})

	t.Run("defaults and lowercases backend", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://h"}
		cfg.Normalize()
		assert.Equal(t, BackendOpenAI, cfg.Backend)

		cfg = &Config{Backend: " Ollama ", EmbeddingHost: "http://h"}
		cfg.Normalize()
		assert.Equal(t, BackendOllama, cfg.Backend)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := NewConfig(WithBackend("bedrock"))
		assert.ErrorContains(t, cfg.Validate(), "unknown backend")
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""))
		assert.ErrorContains(t, cfg.Validate(), "EmbeddingHost is required")
	})

	t.Run("host without scheme", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("localhost:11434"))
		assert.ErrorContains(t, cfg.Validate(), "invalid EmbeddingHost")
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.ErrorContains(t, cfg.Validate(), "EmbeddingModel is required")
	})
}
