package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/embedding"
	"github.com/spigell/interview-coach/internal/vectorstore"
)

const (
	// SourceResume tags chunks extracted from the candidate's resume.
	SourceResume = "resume"
	// SourceJobPosting tags chunks extracted from the job posting.
	SourceJobPosting = "job_posting"

	contextSeparator = "\n\n---\n\n"

	technicalQuery  = "technical skills programming tools technologies"
	softSkillsQuery = "teamwork communication leadership collaboration"
	jobQuery        = "job requirements responsibilities"
)

// BuildResult reports how many chunks were stored for a user.
type BuildResult struct {
	ResumeChunks int `json:"resume_chunks"`
	JobChunks    int `json:"job_chunks"`
	TotalChunks  int `json:"total_chunks"`
}

// Builder chunks, embeds and stores resume and job-posting text per user, and
// answers topic-scoped retrieval queries for interview personalization.
type Builder struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	logger   *zap.Logger
}

func NewBuilder(embedder embedding.Embedder, store vectorstore.Store, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{embedder: embedder, store: store, logger: logger}
}

// BuildUserContext replaces the user's stored context with freshly chunked and
// embedded resume and job-posting text. The previous collection is cleared
// first so a rebuild never leaves stale chunks queryable.
func (b *Builder) BuildUserContext(ctx context.Context, userID, resumeText, jobText string) (*BuildResult, error) {
	if err := b.store.DeleteCollection(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear previous context: %w", err)
	}

	resumeChunks := embedding.ChunkBySections(resumeText)
	jobChunks := embedding.ChunkBySections(jobText)

	docs := make([]vectorstore.Document, 0, len(resumeChunks)+len(jobChunks))
	texts := make([]string, 0, cap(docs))

	for i, chunk := range resumeChunks {
		docs = append(docs, vectorstore.Document{
			ID:   chunkID(SourceResume, i),
			Text: chunk,
			Metadata: map[string]string{
				"source":      SourceResume,
				"chunk_index": fmt.Sprintf("%d", i),
			},
		})
		texts = append(texts, chunk)
	}

	for i, chunk := range jobChunks {
		docs = append(docs, vectorstore.Document{
			ID:   chunkID("job", i),
			Text: chunk,
			Metadata: map[string]string{
				"source":      SourceJobPosting,
				"chunk_index": fmt.Sprintf("%d", i),
			},
		})
		texts = append(texts, chunk)
	}

	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed context chunks: %w", err)
	}

	for i := range docs {
		docs[i].Embedding = vectors[i]
	}

	if err := b.store.Upsert(ctx, userID, docs); err != nil {
		return nil, fmt.Errorf("store context chunks: %w", err)
	}

	b.logger.Info("user context built",
		zap.String("user_id", userID),
		zap.Int("resume_chunks", len(resumeChunks)),
		zap.Int("job_chunks", len(jobChunks)),
		zap.Int("total_chunks", len(docs)),
	)

	return &BuildResult{
		ResumeChunks: len(resumeChunks),
		JobChunks:    len(jobChunks),
		TotalChunks:  len(docs),
	}, nil
}

// QueryContext retrieves the top-k chunks for a query, optionally restricted
// to one source, and joins them as "[SOURCE]: chunk" blocks in descending
// similarity order.
func (b *Builder) QueryContext(ctx context.Context, userID, query string, k int, sourceFilter string) (string, error) {
	vector, err := b.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	var filter map[string]string
	if sourceFilter != "" {
		filter = map[string]string{"source": sourceFilter}
	}

	results, err := b.store.Query(ctx, userID, vector, k, filter)
	if err != nil {
		return "", fmt.Errorf("query context: %w", err)
	}

	parts := make([]string, 0, len(results))
	for _, res := range results {
		source := res.Document.Metadata["source"]
		if source == "" {
			source = "unknown"
		}
		parts = append(parts, fmt.Sprintf("[%s]: %s", strings.ToUpper(source), res.Document.Text))
	}

	return strings.Join(parts, contextSeparator), nil
}

// TechnicalContext retrieves chunks relevant to technical interview questions.
func (b *Builder) TechnicalContext(ctx context.Context, userID string) (string, error) {
	return b.QueryContext(ctx, userID, technicalQuery, 4, "")
}

// SoftSkillsContext retrieves chunks relevant to behavioral questions.
func (b *Builder) SoftSkillsContext(ctx context.Context, userID string) (string, error) {
	return b.QueryContext(ctx, userID, softSkillsQuery, 4, "")
}

// JobContext retrieves job-posting chunks used to ground answer analysis.
func (b *Builder) JobContext(ctx context.Context, userID string) (string, error) {
	return b.QueryContext(ctx, userID, jobQuery, 3, "")
}

func chunkID(prefix string, index int) string {
	return fmt.Sprintf("%s_%d_%s", prefix, index, uuid.NewString()[:8])
}
