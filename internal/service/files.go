package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"aula-rag/internal/dto"
	"aula-rag/internal/models"
	"aula-rag/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrFileNotFound means the topic file id does not exist.
var ErrFileNotFound = errors.New("file not found")

// FileService manages uploaded study materials: blob storage, the metadata
// record and the file's presence in the topic's vector index.
type FileService struct {
	files    FileStore
	blobs    storage.BlobStore
	indexing *IndexingService
	logger   *zap.Logger
}

func NewFileService(files FileStore, blobs storage.BlobStore, indexing *IndexingService, logger *zap.Logger) *FileService {
	return &FileService{
		files:    files,
		blobs:    blobs,
		indexing: indexing,
		logger:   logger,
	}
}

// Upload stores the blob, records the file and kicks off indexing in the
// background. The upload response does not wait for embedding.
func (s *FileService) Upload(ctx context.Context, topicID, subjectID, teacherID uuid.UUID, fileName, fileType string, data []byte) (*dto.FileResponse, error) {
	key, err := s.blobs.Put(data, filepath.Ext(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	file := &models.TopicFile{
		ID:         uuid.New(),
		TopicID:    topicID,
		SubjectID:  subjectID,
		TeacherID:  teacherID,
		FileName:   fileName,
		FileType:   fileType,
		FileSize:   int64(len(data)),
		StorageKey: key,
		UploadedAt: time.Now(),
	}

	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.blobs.Delete(key); delErr != nil {
			s.logger.Warn("Failed to clean up blob after record failure", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	go func() {
		indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result := s.indexing.IndexFile(indexCtx, file)
		if !result.Success {
			s.logger.Warn("Background indexing did not complete",
				zap.String("file_id", file.ID.String()),
				zap.String("reason", result.Reason),
			)
		}
	}()

	return s.toResponse(file), nil
}

// Delete removes the file's embeddings first, then the blob, then the record.
// A crash mid-way leaves state that a re-run of Delete cleans up, never
// orphaned vectors.
func (s *FileService) Delete(ctx context.Context, fileID uuid.UUID) error {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return ErrFileNotFound
	}

	if err := s.indexing.RemoveFileEmbeddings(ctx, file.TopicID, file.ID); err != nil {
		return fmt.Errorf("failed to remove embeddings: %w", err)
	}

	if err := s.blobs.Delete(file.StorageKey); err != nil {
		s.logger.Warn("Failed to delete blob",
			zap.String("file_id", file.ID.String()),
			zap.Error(err),
		)
	}

	if err := s.files.Delete(ctx, file.ID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	s.logger.Info("File deleted",
		zap.String("file_id", file.ID.String()),
		zap.String("topic_id", file.TopicID.String()),
	)

	return nil
}

// DeleteByTopic removes every file of a topic, then drops the topic's vector
// namespace. Called when the topic itself is being deleted.
func (s *FileService) DeleteByTopic(ctx context.Context, topicID uuid.UUID) error {
	files, err := s.files.ListByTopic(ctx, topicID)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := s.Delete(ctx, file.ID); err != nil {
			return fmt.Errorf("failed to delete file %s: %w", file.ID, err)
		}
	}

	return s.indexing.RemoveTopicEmbeddings(ctx, topicID)
}

func (s *FileService) GetByID(ctx context.Context, fileID uuid.UUID) (*dto.FileResponse, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, ErrFileNotFound
	}
	return s.toResponse(file), nil
}

func (s *FileService) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*dto.FileResponse, error) {
	files, err := s.files.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(files), nil
}

func (s *FileService) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*dto.FileResponse, error) {
	files, err := s.files.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(files), nil
}

// ReindexTopic re-runs the indexing pipeline over every file of a topic.
func (s *FileService) ReindexTopic(ctx context.Context, topicID uuid.UUID) ([]dto.FileIndexResultResponse, error) {
	results, err := s.indexing.IndexTopicFiles(ctx, topicID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.FileIndexResultResponse, len(results))
	for i, r := range results {
		responses[i] = dto.FileIndexResultResponse{
			FileID:  r.FileID.String(),
			Success: r.Success,
			Reason:  r.Reason,
		}
	}
	return responses, nil
}

func (s *FileService) toResponse(file *models.TopicFile) *dto.FileResponse {
	resp := &dto.FileResponse{
		ID:         file.ID.String(),
		TopicID:    file.TopicID.String(),
		SubjectID:  file.SubjectID.String(),
		FileName:   file.FileName,
		FileType:   file.FileType,
		FileSize:   file.FileSize,
		URL:        s.blobs.URL(file.StorageKey),
		UploadedAt: file.UploadedAt.Format(time.RFC3339),
	}
	if file.IndexedAt != nil {
		resp.IndexedAt = file.IndexedAt.Format(time.RFC3339)
	}
	return resp
}

func (s *FileService) toResponses(files []*models.TopicFile) []*dto.FileResponse {
	responses := make([]*dto.FileResponse, len(files))
	for i, f := range files {
		responses[i] = s.toResponse(f)
	}
	return responses
}
