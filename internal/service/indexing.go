package service

import (
	"context"
	"errors"
	"time"

	"aula-rag/internal/models"
	"aula-rag/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore is the topic-file metadata backend. Implemented by
// repository.FileRepository.
type FileStore interface {
	Create(ctx context.Context, file *models.TopicFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TopicFile, error)
	ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*models.TopicFile, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*models.TopicFile, error)
	MarkIndexed(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileIndexResult is the per-file outcome of an indexing run. A failed file
// never aborts the batch; Reason explains the skip.
type FileIndexResult struct {
	FileID  uuid.UUID
	Success bool
	Reason  string
}

// IndexingService drives the extract -> chunk -> embed -> store pipeline for
// uploaded files.
type IndexingService struct {
	files     FileStore
	blobs     storage.BlobStore
	extractor *ExtractorService
	rag       *RAGService
	logger    *zap.Logger
}

func NewIndexingService(files FileStore, blobs storage.BlobStore, extractor *ExtractorService, rag *RAGService, logger *zap.Logger) *IndexingService {
	return &IndexingService{
		files:     files,
		blobs:     blobs,
		extractor: extractor,
		rag:       rag,
		logger:    logger,
	}
}

// IndexFile extracts the file's text and replaces its entries in the topic
// namespace. Errors are captured in the result rather than returned, so batch
// callers can keep going.
func (s *IndexingService) IndexFile(ctx context.Context, file *models.TopicFile) FileIndexResult {
	result := FileIndexResult{FileID: file.ID}

	data, err := s.blobs.Get(file.StorageKey)
	if err != nil {
		s.logger.Error("Failed to read file from storage",
			zap.String("file_id", file.ID.String()),
			zap.Error(err),
		)
		result.Reason = "File not found in storage"
		return result
	}

	text, err := s.extractor.Extract(data, file.FileType)
	if err != nil {
		if errors.Is(err, ErrNoTextContent) {
			s.logger.Warn("No text extracted from file",
				zap.String("file_id", file.ID.String()),
				zap.String("file_name", file.FileName),
			)
			result.Reason = "No text content"
			return result
		}
		s.logger.Error("Failed to extract text",
			zap.String("file_id", file.ID.String()),
			zap.String("file_name", file.FileName),
			zap.Error(err),
		)
		result.Reason = err.Error()
		return result
	}

	if _, err := s.rag.Add(ctx, file.TopicID.String(), file.ID.String(), text); err != nil {
		if errors.Is(err, ErrNoTextContent) {
			result.Reason = "No text content"
			return result
		}
		s.logger.Error("Failed to index file content",
			zap.String("file_id", file.ID.String()),
			zap.Error(err),
		)
		result.Reason = err.Error()
		return result
	}

	if err := s.files.MarkIndexed(ctx, file.ID, time.Now()); err != nil {
		s.logger.Warn("Failed to mark file as indexed",
			zap.String("file_id", file.ID.String()),
			zap.Error(err),
		)
	}

	result.Success = true
	return result
}

// IndexTopicFiles re-indexes every file of a topic sequentially and reports
// the per-file outcomes.
func (s *IndexingService) IndexTopicFiles(ctx context.Context, topicID uuid.UUID) ([]FileIndexResult, error) {
	files, err := s.files.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	results := make([]FileIndexResult, 0, len(files))
	for _, file := range files {
		results = append(results, s.IndexFile(ctx, file))
	}

	return results, nil
}

// RemoveFileEmbeddings drops a file's entries from its topic namespace.
func (s *IndexingService) RemoveFileEmbeddings(ctx context.Context, topicID, fileID uuid.UUID) error {
	return s.rag.Remove(ctx, topicID.String(), fileID.String())
}

// RemoveTopicEmbeddings drops the topic's namespace entirely.
func (s *IndexingService) RemoveTopicEmbeddings(ctx context.Context, topicID uuid.UUID) error {
	return s.rag.RemoveNamespace(ctx, topicID.String())
}
