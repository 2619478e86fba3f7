package embedding

import "context"

// Embedder converts free text into numeric vector representations.
type Embedder interface {
	// Embed generates an embedding for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for multiple texts in one API call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}
