package repository

import (
	"context"
	"time"

	"aula-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var fileColumns = []string{"id", "topic_id", "subject_id", "teacher_id", "file_name", "file_type", "file_size", "storage_key", "uploaded_at", "indexed_at"}

type FileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFileRepository(db *pgxpool.Pool, logger *zap.Logger) *FileRepository {
	return &FileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *FileRepository) Create(ctx context.Context, file *models.TopicFile) error {
	query := squirrel.Insert("topic_files").
		Columns(fileColumns...).
		Values(file.ID, file.TopicID, file.SubjectID, file.TeacherID, file.FileName, file.FileType, file.FileSize, file.StorageKey, file.UploadedAt, file.IndexedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TopicFile, error) {
	query := squirrel.Select(fileColumns...).
		From("topic_files").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var f models.TopicFile
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&f.ID, &f.TopicID, &f.SubjectID, &f.TeacherID, &f.FileName, &f.FileType, &f.FileSize, &f.StorageKey, &f.UploadedAt, &f.IndexedAt,
	)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *FileRepository) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*models.TopicFile, error) {
	return r.list(ctx, squirrel.Eq{"topic_id": topicID})
}

func (r *FileRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*models.TopicFile, error) {
	return r.list(ctx, squirrel.Eq{"subject_id": subjectID})
}

func (r *FileRepository) list(ctx context.Context, pred squirrel.Eq) ([]*models.TopicFile, error) {
	query := squirrel.Select(fileColumns...).
		From("topic_files").
		Where(pred).
		OrderBy("uploaded_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.TopicFile
	for rows.Next() {
		var f models.TopicFile
		if err := rows.Scan(
			&f.ID, &f.TopicID, &f.SubjectID, &f.TeacherID, &f.FileName, &f.FileType, &f.FileSize, &f.StorageKey, &f.UploadedAt, &f.IndexedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}

	return files, nil
}

// MarkIndexed records the moment a file's content landed in the vector index.
func (r *FileRepository) MarkIndexed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := squirrel.Update("topic_files").
		Set("indexed_at", at).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("topic_files").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
