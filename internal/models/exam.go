package models

import (
	"time"

	"github.com/google/uuid"
)

type ExamStatus string

const (
	ExamStatusPending   ExamStatus = "pending"
	ExamStatusCompleted ExamStatus = "completed"
)

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeEssay          QuestionType = "essay"
)

// Question is a single exam question. CorrectAnswer is a string for
// multiple_choice (a literal copy of one option), a bool for true_false, or a
// structured object for rubric-graded types; only multiple_choice is produced
// by the generation pipeline.
type Question struct {
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer any          `json:"correctAnswer"`
	Points        float64      `json:"points"`
}

// Exam is immutable once created except for the one-way pending -> completed
// status transition performed when a result is recorded.
type Exam struct {
	ID        uuid.UUID  `db:"id"`
	TopicID   uuid.UUID  `db:"topic_id"`
	SubjectID uuid.UUID  `db:"subject_id"`
	UserID    uuid.UUID  `db:"user_id"`
	Questions []Question `db:"questions"` // stored as JSONB
	Status    ExamStatus `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
}

// Answer references a question by its 0-based index in the exam.
type Answer struct {
	QuestionIndex int `json:"questionIndex"`
	Answer        any `json:"answer"`
}

type ExamResult struct {
	ID             uuid.UUID `db:"id"`
	ExamID         uuid.UUID `db:"exam_id"`
	TopicID        uuid.UUID `db:"topic_id"`
	UserID         uuid.UUID `db:"user_id"`
	Answers        []Answer  `db:"answers"` // stored as JSONB
	Score          float64   `db:"score"`   // 0-100
	TotalQuestions int       `db:"total_questions"`
	CompletedAt    time.Time `db:"completed_at"`
}
