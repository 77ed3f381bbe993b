package repository

import (
	"context"

	"aula-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type EnrollmentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEnrollmentRepository(db *pgxpool.Pool, logger *zap.Logger) *EnrollmentRepository {
	return &EnrollmentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *models.SubjectEnrollment) error {
	query := squirrel.Insert("subject_enrollments").
		Columns("id", "subject_id", "user_id", "enrolled_at", "enrolled_by").
		Values(e.ID, e.SubjectID, e.UserID, e.EnrolledAt, e.EnrolledBy).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *EnrollmentRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*models.SubjectEnrollment, error) {
	return r.list(ctx, squirrel.Eq{"subject_id": subjectID})
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.SubjectEnrollment, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID})
}

func (r *EnrollmentRepository) list(ctx context.Context, pred squirrel.Eq) ([]*models.SubjectEnrollment, error) {
	query := squirrel.Select("id", "subject_id", "user_id", "enrolled_at", "enrolled_by").
		From("subject_enrollments").
		Where(pred).
		OrderBy("enrolled_at DESC").
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

	var enrollments []*models.SubjectEnrollment
	for rows.Next() {
		var e models.SubjectEnrollment
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.UserID, &e.EnrolledAt, &e.EnrolledBy); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &e)
	}

	return enrollments, nil
}

func (r *EnrollmentRepository) Delete(ctx context.Context, subjectID, userID uuid.UUID) error {
	query := squirrel.Delete("subject_enrollments").
		Where(squirrel.Eq{"subject_id": subjectID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
