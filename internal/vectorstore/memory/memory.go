package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/spigell/interview-coach/internal/vectorstore"
)

// Store is an in-memory vector store using brute-force cosine similarity.
// It is the default backend and needs no external services.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]vectorstore.Document
}

func New() *Store {
	return &Store{collections: make(map[string][]vectorstore.Document)}
}

// Upsert replaces the user's collection wholesale.
func (s *Store) Upsert(_ context.Context, userID string, docs []vectorstore.Document) error {
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return errors.New("document is missing an embedding")
		}
	}

	name := vectorstore.CollectionName(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]vectorstore.Document, len(docs))
	copy(replacement, docs)
	s.collections[name] = replacement

	return nil
}

func (s *Store) Query(_ context.Context, userID string, vector []float32, k int, filter map[string]string) ([]vectorstore.Result, error) {
	name := vectorstore.CollectionName(userID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, ok := s.collections[name]
	if !ok || len(collection) == 0 {
		return nil, nil
	}

	results := make([]vectorstore.Result, 0, len(collection))
	for _, doc := range collection {
		if !matchesFilter(doc.Metadata, filter) {
			continue
		}
		results = append(results, vectorstore.Result{
			Document: doc,
			Distance: 1 - cosineSimilarity(vector, doc.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })

	if k > 0 && k < len(results) {
		results = results[:k]
	}

	return results, nil
}

func (s *Store) DeleteCollection(_ context.Context, userID string) error {
	name := vectorstore.CollectionName(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, name)

	return nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
