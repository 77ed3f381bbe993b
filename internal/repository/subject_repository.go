package repository

import (
	"context"

	"aula-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SubjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubjectRepository(db *pgxpool.Pool, logger *zap.Logger) *SubjectRepository {
	return &SubjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	query := squirrel.Insert("subjects").
		Columns("id", "name", "description", "teacher_id", "created_at", "updated_at").
		Values(subject.ID, subject.Name, subject.Description, subject.TeacherID, subject.CreatedAt, subject.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	query := squirrel.Select("id", "name", "description", "teacher_id", "created_at", "updated_at").
		From("subjects").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.Subject
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.Name, &s.Description, &s.TeacherID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*models.Subject, error) {
	query := squirrel.Select("id", "name", "description", "teacher_id", "created_at", "updated_at").
		From("subjects").
		Where(squirrel.Eq{"teacher_id": teacherID}).
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

	var subjects []*models.Subject
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.TeacherID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, &s)
	}

	return subjects, nil
}

func (r *SubjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("subjects").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
