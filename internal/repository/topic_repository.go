package repository

import (
	"context"

	"aula-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TopicRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTopicRepository(db *pgxpool.Pool, logger *zap.Logger) *TopicRepository {
	return &TopicRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	query := squirrel.Insert("topics").
		Columns("id", "subject_id", "name", "description", "teacher_id", "created_at", "updated_at").
		Values(topic.ID, topic.SubjectID, topic.Name, topic.Description, topic.TeacherID, topic.CreatedAt, topic.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TopicRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	query := squirrel.Select("id", "subject_id", "name", "description", "teacher_id", "created_at", "updated_at").
		From("topics").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var t models.Topic
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.SubjectID, &t.Name, &t.Description, &t.TeacherID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *TopicRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*models.Topic, error) {
	query := squirrel.Select("id", "subject_id", "name", "description", "teacher_id", "created_at", "updated_at").
		From("topics").
		Where(squirrel.Eq{"subject_id": subjectID}).
		OrderBy("created_at DESC").
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

	var topics []*models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Name, &t.Description, &t.TeacherID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, &t)
	}

	return topics, nil
}

func (r *TopicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("topics").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
