package chroma

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/utils"
	"github.com/spigell/interview-coach/internal/vectorstore"
)

const (
	defaultTimeout = 10 * time.Second

	readinessProbeInterval = time.Second
)

// Store talks to a ChromaDB server over its REST API. One Chroma collection
// is kept per user, created with cosine distance.
type Store struct {
	client *resty.Client
	logger *zap.Logger
}

// New creates a Chroma-backed store for the given base URL (e.g. http://localhost:8000).
func New(baseURL string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")

	return &Store{client: client, logger: logger}
}

// WaitReady polls the heartbeat endpoint until the server answers or the
// context expires.
func (s *Store) WaitReady(ctx context.Context) error {
	for {
		resp, err := s.client.R().SetContext(ctx).Get("/api/v1/heartbeat")
		if err == nil && resp.StatusCode() == http.StatusOK {
			return nil
		}

		s.logger.Debug("chroma not ready yet", zap.Error(err))

		if err := utils.WaitFor(ctx, readinessProbeInterval); err != nil {
			return fmt.Errorf("waiting for chroma: %w", err)
		}
	}
}

type collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Store) getOrCreateCollection(ctx context.Context, name string) (*collection, error) {
	var col collection
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"name":          name,
			"metadata":      map[string]any{"hnsw:space": "cosine"},
			"get_or_create": true,
		}).
		SetResult(&col).
		Post("/api/v1/collections")
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create collection: bad status: %s", resp.Status())
	}

	return &col, nil
}

// Upsert replaces the user's collection with the provided documents. Replace
// semantics are implemented by dropping the old collection first.
func (s *Store) Upsert(ctx context.Context, userID string, docs []vectorstore.Document) error {
	name := vectorstore.CollectionName(userID)

	if err := s.DeleteCollection(ctx, userID); err != nil {
		return err
	}

	col, err := s.getOrCreateCollection(ctx, name)
	if err != nil {
		return err
	}

	ids := make([]string, len(docs))
	documents := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))
	metadatas := make([]map[string]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		documents[i] = doc.Text
		embeddings[i] = doc.Embedding
		metadatas[i] = doc.Metadata
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"ids":        ids,
			"documents":  documents,
			"embeddings": embeddings,
			"metadatas":  metadatas,
		}).
		Post(fmt.Sprintf("/api/v1/collections/%s/add", col.ID))
	if err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("add documents: bad status: %s", resp.Status())
	}

	s.logger.Debug("documents added to chroma",
		zap.String("collection", name),
		zap.Int("documents", len(docs)),
	)

	return nil
}

type queryResponse struct {
	Documents [][]string            `json:"documents"`
	Metadatas [][]map[string]string `json:"metadatas"`
	Distances [][]float64           `json:"distances"`
	IDs       [][]string            `json:"ids"`
}

func (s *Store) Query(ctx context.Context, userID string, vector []float32, k int, filter map[string]string) ([]vectorstore.Result, error) {
	name := vectorstore.CollectionName(userID)

	col, err := s.getOrCreateCollection(ctx, name)
	if err != nil {
		// A store-side failure degrades to an empty result set.
		s.logger.Warn("chroma query degraded to empty results", zap.String("collection", name), zap.Error(err))
		return nil, nil
	}

	body := map[string]any{
		"query_embeddings": [][]float32{vector},
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	if len(filter) > 0 {
		body["where"] = filter
	}

	var result queryResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(fmt.Sprintf("/api/v1/collections/%s/query", col.ID))
	if err != nil || resp.IsError() {
		s.logger.Warn("chroma query degraded to empty results", zap.String("collection", name), zap.Error(err))
		return nil, nil
	}

	if len(result.Documents) == 0 {
		return nil, nil
	}

	results := make([]vectorstore.Result, 0, len(result.Documents[0]))
	for i, doc := range result.Documents[0] {
		res := vectorstore.Result{Document: vectorstore.Document{Text: doc}}
		if len(result.IDs) > 0 && i < len(result.IDs[0]) {
			res.Document.ID = result.IDs[0][i]
		}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			res.Document.Metadata = result.Metadatas[0][i]
		}
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			res.Distance = result.Distances[0][i]
		}
		results = append(results, res)
	}

	return results, nil
}

func (s *Store) DeleteCollection(ctx context.Context, userID string) error {
	name := vectorstore.CollectionName(userID)

	resp, err := s.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/v1/collections/%s", name))
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	// Deleting a collection that never existed is not an error.
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound &&
		resp.StatusCode() != http.StatusInternalServerError {
		return fmt.Errorf("delete collection: bad status: %s", resp.Status())
	}

	return nil
}
