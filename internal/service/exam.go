package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"aula-rag/internal/dto"
	"aula-rag/internal/models"
	"aula-rag/internal/repository"
	"aula-rag/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoMaterial means the topic has no indexed content to generate from.
	ErrNoMaterial = errors.New("no indexed material for topic")
	// ErrExamNotFound means the exam id does not exist.
	ErrExamNotFound = errors.New("exam not found")
	// ErrExamAlreadyCompleted means a result was already recorded for the exam.
	ErrExamAlreadyCompleted = errors.New("exam already completed")
)

// examProbeQuery is a broad retrieval probe: exam generation wants coverage of
// the whole topic, not an answer to a specific question.
const examProbeQuery = "educational content topic material"

const examSystemPrompt = `Eres un generador de exámenes educativos. Basándote en el siguiente contenido de los materiales del tema, genera exactamente 10 preguntas de opción múltiple (multiple choice) en español.

Cada pregunta debe:
- Ser clara y educativa
- Tener 4 opciones de respuesta (A, B, C, D)
- Tener una respuesta correcta claramente identificable
- Cubrir diferentes aspectos del contenido
- Ser de dificultad apropiada para estudiantes

Formato de respuesta (JSON array):
[
  {
    "type": "multiple_choice",
    "question": "Texto de la pregunta aquí",
    "options": ["Opción A", "Opción B", "Opción C", "Opción D"],
    "correctAnswer": "Opción A",
    "points": 1
  }
]

Contenido del tema:
%s

Responde SOLO con el JSON array, sin texto adicional.`

const examUserPrompt = "Genera 10 preguntas de opción múltiple basadas en el contenido proporcionado."

// ExamStore is the exam persistence backend. Implemented by
// repository.ExamRepository.
type ExamStore interface {
	CreateExam(ctx context.Context, exam *models.Exam) error
	GetExamByID(ctx context.Context, id uuid.UUID) (*models.Exam, error)
	RecordResult(ctx context.Context, result *models.ExamResult) error
}

// ExamService generates exams from topic material and grades submissions.
type ExamService struct {
	exams     ExamStore
	rag       *RAGService
	generator Generator
	config    *config.RAGConfig
	logger    *zap.Logger
}

func NewExamService(exams ExamStore, rag *RAGService, generator Generator, cfg *config.RAGConfig, logger *zap.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		rag:       rag,
		generator: generator,
		config:    cfg,
		logger:    logger,
	}
}

// GenerateExam retrieves the topic's material with a permissive threshold,
// asks the model for exactly ten multiple-choice questions and persists the
// exam as pending.
func (s *ExamService) GenerateExam(ctx context.Context, topicID, subjectID, userID uuid.UUID) (*dto.GenerateExamResponse, error) {
	result, err := s.rag.Search(ctx, topicID.String(), examProbeQuery, s.config.ExamLimit, s.config.ExamThreshold)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	s.logger.Info("Exam generation retrieval completed",
		zap.String("topic_id", topicID.String()),
		zap.Int("entries", len(result.Entries)),
		zap.Bool("has_context", result.Text != ""),
	)

	if result.Text == "" {
		return nil, ErrNoMaterial
	}

	text, err := s.generator.Complete(ctx, fmt.Sprintf(examSystemPrompt, result.Text), examUserPrompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	questions, err := parseExamQuestions(text)
	if err != nil {
		s.logger.Error("Failed to parse generated questions",
			zap.String("topic_id", topicID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	exam := &models.Exam{
		ID:        uuid.New(),
		TopicID:   topicID,
		SubjectID: subjectID,
		UserID:    userID,
		Questions: questions,
		Status:    models.ExamStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.exams.CreateExam(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to save exam: %w", err)
	}

	return &dto.GenerateExamResponse{
		ExamID:       exam.ID.String(),
		Questions:    questions,
		HasContext:   true,
		EntriesFound: len(result.Entries),
	}, nil
}

// SubmitAnswers grades a submission against the exam's answer key and records
// the result. Answers referencing questions outside the exam are ignored; an
// unanswered question counts as incorrect.
func (s *ExamService) SubmitAnswers(ctx context.Context, examID uuid.UUID, answers []models.Answer) (*dto.SubmitAnswersResponse, error) {
	exam, err := s.exams.GetExamByID(ctx, examID)
	if err != nil {
		return nil, ErrExamNotFound
	}

	if exam.Status == models.ExamStatusCompleted {
		return nil, ErrExamAlreadyCompleted
	}

	totalQuestions := len(exam.Questions)
	correctAnswers := 0
	for _, answer := range answers {
		if answer.QuestionIndex < 0 || answer.QuestionIndex >= totalQuestions {
			continue
		}
		question := exam.Questions[answer.QuestionIndex]
		if answersEqual(answer.Answer, question.CorrectAnswer) {
			correctAnswers++
		}
	}

	score := 0.0
	if totalQuestions > 0 {
		score = float64(correctAnswers) / float64(totalQuestions) * 100
	}

	result := &models.ExamResult{
		ID:             uuid.New(),
		ExamID:         exam.ID,
		TopicID:        exam.TopicID,
		UserID:         exam.UserID,
		Answers:        answers,
		Score:          score,
		TotalQuestions: totalQuestions,
		CompletedAt:    time.Now(),
	}

	if err := s.exams.RecordResult(ctx, result); err != nil {
		if errors.Is(err, repository.ErrExamNotPending) {
			return nil, ErrExamAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	s.logger.Info("Exam submitted",
		zap.String("exam_id", exam.ID.String()),
		zap.Float64("score", score),
		zap.Int("correct", correctAnswers),
		zap.Int("total", totalQuestions),
	)

	return &dto.SubmitAnswersResponse{
		ResultID:       result.ID.String(),
		Score:          score,
		CorrectAnswers: correctAnswers,
		TotalQuestions: totalQuestions,
		Percentage:     int(math.Round(score)),
	}, nil
}
