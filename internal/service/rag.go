package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aula-rag/internal/models"
	"aula-rag/pkg/config"

	"go.uber.org/zap"
)

// VectorStore is the retrieval backend. Implemented by
// repository.VectorRepository (Postgres) and repository.MemoryVectorStore.
type VectorStore interface {
	EnsureNamespace(ctx context.Context, namespace string, dimension int) error
	HasNamespace(ctx context.Context, namespace string) (bool, error)
	Replace(ctx context.Context, namespace, key string, entries []models.VectorEntry) error
	Search(ctx context.Context, namespace string, vector []float32, filters map[string]string, limit int) ([]models.VectorMatch, error)
	DeleteByKey(ctx context.Context, namespace, key string) error
	DeleteNamespace(ctx context.Context, namespace string) error
}

// Embedder turns texts into vectors. Implemented by LLMService.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// SearchResult carries the concatenated context text alongside the raw
// matches, mirroring what retrieval consumers need: chat and exam generation
// prompt with Text, responses report len(Entries).
type SearchResult struct {
	Text    string
	Entries []models.VectorMatch
}

// RAGService owns the chunk/embed/store pipeline and scoped retrieval. Every
// topic gets its own namespace; a file's chunks live under its id as key so
// re-indexing replaces them wholesale.
type RAGService struct {
	vectors  VectorStore
	embedder Embedder
	chunker  *sentenceChunker
	config   *config.RAGConfig
	logger   *zap.Logger
}

func NewRAGService(vectors VectorStore, embedder Embedder, cfg *config.RAGConfig, logger *zap.Logger) *RAGService {
	return &RAGService{
		vectors:  vectors,
		embedder: embedder,
		chunker:  newSentenceChunker(cfg.ChunkSentences, cfg.ChunkOverlap),
		config:   cfg,
		logger:   logger,
	}
}

// Add chunks the text, embeds the chunks and replaces the file's entries in
// the topic namespace. Returns the number of chunks written.
func (s *RAGService) Add(ctx context.Context, topicID, fileID, text string) (int, error) {
	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, ErrNoTextContent
	}

	if err := s.vectors.EnsureNamespace(ctx, topicID, s.embedder.Dimension()); err != nil {
		return 0, fmt.Errorf("failed to ensure namespace: %w", err)
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	now := time.Now()
	entries := make([]models.VectorEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = models.VectorEntry{
			Namespace:  topicID,
			Key:        fileID,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  embeddings[i],
			Filters: map[string]string{
				models.FilterTopicID: topicID,
				models.FilterFileID:  fileID,
			},
			CreatedAt: now,
		}
	}

	if err := s.vectors.Replace(ctx, topicID, fileID, entries); err != nil {
		return 0, fmt.Errorf("failed to store entries: %w", err)
	}

	s.logger.Info("Indexed content into topic namespace",
		zap.String("topic_id", topicID),
		zap.String("file_id", fileID),
		zap.Int("chunks", len(chunks)),
	)

	return len(chunks), nil
}

// Search embeds the query and returns the matches above the score threshold,
// scoped to the topic namespace and filtered by topicId. The filter is
// redundant with the namespace; entries whose topicId disagrees are logged as
// an integrity warning but still returned.
func (s *RAGService) Search(ctx context.Context, topicID, query string, limit int, threshold float64) (*SearchResult, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vectors))
	}

	filters := map[string]string{models.FilterTopicID: topicID}
	matches, err := s.vectors.Search(ctx, topicID, vectors[0], filters, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	var kept []models.VectorMatch
	var parts []string
	for _, m := range matches {
		if m.Score < threshold {
			continue
		}
		if got := m.Filters[models.FilterTopicID]; got != topicID {
			s.logger.Warn("Vector entry topic filter mismatch",
				zap.String("namespace", topicID),
				zap.String("entry_topic_id", got),
				zap.String("key", m.Key),
			)
		}
		kept = append(kept, m)
		parts = append(parts, m.Content)
	}

	s.logger.Info("RAG search completed",
		zap.String("topic_id", topicID),
		zap.Int("entries", len(kept)),
	)

	return &SearchResult{
		Text:    strings.Join(parts, "\n\n"),
		Entries: kept,
	}, nil
}

// Remove deletes a file's entries from its topic namespace. A namespace that
// was never created counts as already clean.
func (s *RAGService) Remove(ctx context.Context, topicID, fileID string) error {
	exists, err := s.vectors.HasNamespace(ctx, topicID)
	if err != nil {
		return fmt.Errorf("failed to check namespace: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.vectors.DeleteByKey(ctx, topicID, fileID); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// RemoveNamespace drops the whole topic namespace, entries included. Used
// when the topic itself is deleted.
func (s *RAGService) RemoveNamespace(ctx context.Context, topicID string) error {
	if err := s.vectors.DeleteNamespace(ctx, topicID); err != nil {
		return fmt.Errorf("failed to delete namespace: %w", err)
	}
	return nil
}
