package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"aula-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrExamNotPending is returned by RecordResult when the exam's status is no
// longer "pending", i.e. a result has already been recorded for it.
var ErrExamNotPending = errors.New("exam is not pending")

type ExamRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExamRepository(db *pgxpool.Pool, logger *zap.Logger) *ExamRepository {
	return &ExamRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExamRepository) CreateExam(ctx context.Context, exam *models.Exam) error {
	questions, err := json.Marshal(exam.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := squirrel.Insert("exams").
		Columns("id", "topic_id", "subject_id", "user_id", "questions", "status", "created_at").
		Values(exam.ID, exam.TopicID, exam.SubjectID, exam.UserID, questions, exam.Status, exam.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExamRepository) GetExamByID(ctx context.Context, id uuid.UUID) (*models.Exam, error) {
	query := squirrel.Select("id", "topic_id", "subject_id", "user_id", "questions", "status", "created_at").
		From("exams").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var exam models.Exam
	var questions []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&exam.ID, &exam.TopicID, &exam.SubjectID, &exam.UserID, &questions, &exam.Status, &exam.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &exam.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}

	return &exam, nil
}

// RecordResult inserts the result and flips the exam to completed in one
// transaction. The status update is conditioned on the exam still being
// pending, so concurrent submissions for the same exam cannot both succeed.
func (r *ExamRepository) RecordResult(ctx context.Context, result *models.ExamResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateSQL, updateArgs, err := squirrel.Update("exams").
		Set("status", models.ExamStatusCompleted).
		Where(squirrel.Eq{"id": result.ExamID, "status": models.ExamStatusPending}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, updateSQL, updateArgs...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExamNotPending
	}

	insertSQL, insertArgs, err := squirrel.Insert("exam_results").
		Columns("id", "exam_id", "topic_id", "user_id", "answers", "score", "total_questions", "completed_at").
		Values(result.ID, result.ExamID, result.TopicID, result.UserID, answers, result.Score, result.TotalQuestions, result.CompletedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ExamRepository) ListResultsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ExamResult, error) {
	return r.listResults(ctx, squirrel.Eq{"user_id": userID})
}

func (r *ExamRepository) ListResultsByTopic(ctx context.Context, topicID uuid.UUID) ([]*models.ExamResult, error) {
	return r.listResults(ctx, squirrel.Eq{"topic_id": topicID})
}

func (r *ExamRepository) listResults(ctx context.Context, pred squirrel.Eq) ([]*models.ExamResult, error) {
	query := squirrel.Select("id", "exam_id", "topic_id", "user_id", "answers", "score", "total_questions", "completed_at").
		From("exam_results").
		Where(pred).
		OrderBy("completed_at DESC").
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

	var results []*models.ExamResult
	for rows.Next() {
		var res models.ExamResult
		var answers []byte
		if err := rows.Scan(
			&res.ID, &res.ExamID, &res.TopicID, &res.UserID, &answers, &res.Score, &res.TotalQuestions, &res.CompletedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &res.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
		results = append(results, &res)
	}

	return results, nil
}
