package vectorstore

import (
	"context"
	"strings"
)

// Document is a single stored text fragment with its embedding and metadata.
type Document struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// Result is a query hit. Distance is cosine distance (1 - similarity),
// so lower is closer.
type Result struct {
	Document Document
	Distance float64
}

// Store persists embedded documents partitioned into one logical collection
// per user and answers nearest-neighbor queries with an optional exact-match
// metadata filter. Queries against a missing or empty collection return an
// empty result set, not an error.
type Store interface {
	// Upsert replaces the user's collection with the provided documents.
	Upsert(ctx context.Context, userID string, docs []Document) error
	Query(ctx context.Context, userID string, vector []float32, k int, filter map[string]string) ([]Result, error)
	DeleteCollection(ctx context.Context, userID string) error
}

const maxCollectionIDLen = 50

// CollectionName derives a deterministic collection name from a user id,
// sanitizing characters that backing stores reject.
func CollectionName(userID string) string {
	clean := strings.ReplaceAll(userID, "-", "_")
	clean = strings.ReplaceAll(clean, "@", "_at_")
	if len(clean) > maxCollectionIDLen {
		clean = clean[:maxCollectionIDLen]
	}
	return "user_" + clean
}
