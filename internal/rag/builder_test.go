package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/spigell/interview-coach/internal/vectorstore"
	"github.com/spigell/interview-coach/internal/vectorstore/memory"
)

type stubEmbedder struct {
	queries []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.queries = append(s.queries, text)
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, float32(i) * 0.01}
	}
	return vectors, nil
}

func (s *stubEmbedder) Model() string { return "stub-embedder" }

// recordingStore wraps the memory store to capture call order and arguments.
type recordingStore struct {
	vectorstore.Store
	calls []string
	docs  []vectorstore.Document
	ks    []int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: memory.New()}
}

func (r *recordingStore) Upsert(ctx context.Context, userID string, docs []vectorstore.Document) error {
	r.calls = append(r.calls, "upsert")
	r.docs = docs
	return r.Store.Upsert(ctx, userID, docs)
}

func (r *recordingStore) Query(ctx context.Context, userID string, vector []float32, k int, filter map[string]string) ([]vectorstore.Result, error) {
	r.calls = append(r.calls, "query")
	r.ks = append(r.ks, k)
	return r.Store.Query(ctx, userID, vector, k, filter)
}

func (r *recordingStore) DeleteCollection(ctx context.Context, userID string) error {
	r.calls = append(r.calls, "delete")
	return r.Store.DeleteCollection(ctx, userID)
}

const sampleResume = "Senior Go developer.\nSKILLS\nGo, Kubernetes, PostgreSQL."

const sampleJob = "Backend engineer role.\nREQUIREMENTS\nFive years of Go experience."

func TestBuildUserContext(t *testing.T) {
	store := newRecordingStore()
	builder := NewBuilder(&stubEmbedder{}, store, nil)

	result, err := builder.BuildUserContext(context.Background(), "alice", sampleResume, sampleJob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ResumeChunks != 2 || result.JobChunks != 2 {
		t.Fatalf("unexpected chunk counts: %+v", result)
	}

	if result.TotalChunks != result.ResumeChunks+result.JobChunks {
		t.Fatalf("total does not add up: %+v", result)
	}

	// The old collection must be cleared before the new chunks are stored.
	if len(store.calls) != 2 || store.calls[0] != "delete" || store.calls[1] != "upsert" {
		t.Fatalf("unexpected call order: %v", store.calls)
	}

	for _, doc := range store.docs {
		if len(doc.Embedding) == 0 {
			t.Fatalf("document %q stored without an embedding", doc.ID)
		}
		source := doc.Metadata["source"]
		if source != SourceResume && source != SourceJobPosting {
			t.Fatalf("unexpected source tag %q on %q", source, doc.ID)
		}
	}
}

func TestBuildUserContextReplacesPrevious(t *testing.T) {
	store := newRecordingStore()
	builder := NewBuilder(&stubEmbedder{}, store, nil)
	ctx := context.Background()

	if _, err := builder.BuildUserContext(ctx, "alice", sampleResume, sampleJob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := builder.BuildUserContext(ctx, "alice", "Short resume.", "Short job.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := builder.QueryContext(ctx, "alice", "anything", 100, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocks := strings.Split(out, contextSeparator)
	if len(blocks) != result.TotalChunks {
		t.Fatalf("expected %d blocks after rebuild, got %d: %q", result.TotalChunks, len(blocks), out)
	}

	if strings.Contains(out, "Kubernetes") {
		t.Fatalf("expected old chunks to be gone, got %q", out)
	}
}

func TestQueryContextFormat(t *testing.T) {
	store := newRecordingStore()
	builder := NewBuilder(&stubEmbedder{}, store, nil)
	ctx := context.Background()

	if _, err := builder.BuildUserContext(ctx, "alice", "Go developer resume.", "Go developer job."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := builder.QueryContext(ctx, "alice", "go", 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "[RESUME]: ") {
		t.Fatalf("expected an uppercase resume tag, got %q", out)
	}

	if !strings.Contains(out, "[JOB_POSTING]: ") {
		t.Fatalf("expected an uppercase job posting tag, got %q", out)
	}

	if !strings.Contains(out, contextSeparator) {
		t.Fatalf("expected blocks to be separated, got %q", out)
	}
}

func TestQueryContextSourceFilter(t *testing.T) {
	store := newRecordingStore()
	builder := NewBuilder(&stubEmbedder{}, store, nil)
	ctx := context.Background()

	if _, err := builder.BuildUserContext(ctx, "alice", "Go developer resume.", "Go developer job."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := builder.QueryContext(ctx, "alice", "go", 10, SourceResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(out, "[JOB_POSTING]") {
		t.Fatalf("expected only resume chunks, got %q", out)
	}
}

func TestQueryContextEmptyCollection(t *testing.T) {
	builder := NewBuilder(&stubEmbedder{}, newRecordingStore(), nil)

	out, err := builder.QueryContext(context.Background(), "nobody", "go", 5, "")
	if err != nil {
		t.Fatalf("expected no error on an empty collection, got %v", err)
	}

	if out != "" {
		t.Fatalf("expected empty context, got %q", out)
	}
}

func TestTopicQueries(t *testing.T) {
	embedder := &stubEmbedder{}
	store := newRecordingStore()
	builder := NewBuilder(embedder, store, nil)
	ctx := context.Background()

	if _, err := builder.TechnicalContext(ctx, "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := builder.SoftSkillsContext(ctx, "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := builder.JobContext(ctx, "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(embedder.queries) != 3 {
		t.Fatalf("expected 3 embedded queries, got %v", embedder.queries)
	}

	expectedKs := []int{4, 4, 3}
	for i, k := range expectedKs {
		if store.ks[i] != k {
			t.Fatalf("query %d: expected k=%d, got %d", i, k, store.ks[i])
		}
	}
}
