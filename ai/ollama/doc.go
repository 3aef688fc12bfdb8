// Package ollama provides the embedding service over Ollama's native API.
//
//	config := ai.NewConfig(
//	    ai.WithBackend(ai.BackendOllama),
//	    ai.WithEmbeddingHost("http://localhost:11434"),
//	)
//	provider, err := ollama.NewProvider(config)
package ollama
