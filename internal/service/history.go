package service

import (
	"context"
	"math"
	"time"

	"aula-rag/internal/dto"
	"aula-rag/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultStore is the read side of exam history. Implemented by
// repository.ExamRepository.
type ResultStore interface {
	GetExamByID(ctx context.Context, id uuid.UUID) (*models.Exam, error)
	ListResultsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ExamResult, error)
	ListResultsByTopic(ctx context.Context, topicID uuid.UUID) ([]*models.ExamResult, error)
}

// SubjectStore resolves subject names for history entries.
type SubjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error)
}

// TopicStore resolves topic names for history entries.
type TopicStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Topic, error)
}

// UserStore resolves students for the teacher-facing view.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// HistoryService assembles review views over recorded exam results. Related
// records are looked up through per-call caches so a page of results does not
// refetch the same subject or topic.
type HistoryService struct {
	results  ResultStore
	subjects SubjectStore
	topics   TopicStore
	users    UserStore
	logger   *zap.Logger
}

func NewHistoryService(results ResultStore, subjects SubjectStore, topics TopicStore, users UserStore, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		results:  results,
		subjects: subjects,
		topics:   topics,
		users:    users,
		logger:   logger,
	}
}

type historyCaches struct {
	subjects map[uuid.UUID]*models.Subject
	topics   map[uuid.UUID]*models.Topic
	users    map[uuid.UUID]*models.User
}

func newHistoryCaches() *historyCaches {
	return &historyCaches{
		subjects: make(map[uuid.UUID]*models.Subject),
		topics:   make(map[uuid.UUID]*models.Topic),
		users:    make(map[uuid.UUID]*models.User),
	}
}

// GetStudentExamHistory returns the student's completed exams, newest first,
// optionally filtered by subject or topic. Results whose exam was deleted are
// skipped; deleted subjects or topics leave the corresponding field null.
func (s *HistoryService) GetStudentExamHistory(ctx context.Context, userID uuid.UUID, subjectID, topicID *uuid.UUID) ([]dto.ExamHistoryEntry, error) {
	results, err := s.results.ListResultsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	caches := newHistoryCaches()
	entries := make([]dto.ExamHistoryEntry, 0, len(results))

	for _, result := range results {
		exam, err := s.results.GetExamByID(ctx, result.ExamID)
		if err != nil {
			s.logger.Warn("Skipping result with missing exam",
				zap.String("result_id", result.ID.String()),
				zap.String("exam_id", result.ExamID.String()),
			)
			continue
		}

		if subjectID != nil && exam.SubjectID != *subjectID {
			continue
		}
		if topicID != nil && exam.TopicID != *topicID {
			continue
		}

		entries = append(entries, s.buildEntry(ctx, exam, result, caches, false))
	}

	return entries, nil
}

// GetExamResultsByTopic is the teacher view: every student's results for a
// topic, newest first, with the student identity attached.
func (s *HistoryService) GetExamResultsByTopic(ctx context.Context, topicID uuid.UUID) ([]dto.ExamHistoryEntry, error) {
	results, err := s.results.ListResultsByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	caches := newHistoryCaches()
	entries := make([]dto.ExamHistoryEntry, 0, len(results))

	for _, result := range results {
		exam, err := s.results.GetExamByID(ctx, result.ExamID)
		if err != nil {
			s.logger.Warn("Skipping result with missing exam",
				zap.String("result_id", result.ID.String()),
				zap.String("exam_id", result.ExamID.String()),
			)
			continue
		}

		entries = append(entries, s.buildEntry(ctx, exam, result, caches, true))
	}

	return entries, nil
}

func (s *HistoryService) buildEntry(ctx context.Context, exam *models.Exam, result *models.ExamResult, caches *historyCaches, withStudent bool) dto.ExamHistoryEntry {
	entry := dto.ExamHistoryEntry{
		Exam: dto.ExamRef{
			ID:        exam.ID.String(),
			SubjectID: exam.SubjectID.String(),
			TopicID:   exam.TopicID.String(),
			CreatedAt: exam.CreatedAt.Format(time.RFC3339),
		},
		Result: dto.ResultSummary{
			ID:             result.ID.String(),
			Score:          result.Score,
			TotalQuestions: result.TotalQuestions,
			Percentage:     int(math.Round(result.Score)),
			CorrectAnswers: int(math.Round(result.Score / 100 * float64(result.TotalQuestions))),
			CompletedAt:    result.CompletedAt.Format(time.RFC3339),
		},
		Questions: s.reviewQuestions(exam.Questions, result.Answers),
	}

	if subject := s.subject(ctx, caches, exam.SubjectID); subject != nil {
		entry.Subject = &dto.NamedRef{ID: subject.ID.String(), Name: subject.Name}
	}
	if topic := s.topic(ctx, caches, exam.TopicID); topic != nil {
		entry.Topic = &dto.NamedRef{ID: topic.ID.String(), Name: topic.Name}
	}
	if withStudent {
		if user := s.user(ctx, caches, result.UserID); user != nil {
			entry.Student = &dto.StudentRef{
				ID:        user.ID.String(),
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Email:     user.Email,
			}
		}
	}

	return entry
}

// reviewQuestions recomputes per-question correctness with the same
// normalized equality used at grading time. A question without a matching
// answer is marked incorrect with a null student answer.
func (s *HistoryService) reviewQuestions(questions []models.Question, answers []models.Answer) []dto.ReviewQuestion {
	byIndex := make(map[int]models.Answer, len(answers))
	for _, a := range answers {
		byIndex[a.QuestionIndex] = a
	}

	review := make([]dto.ReviewQuestion, len(questions))
	for i, question := range questions {
		options := question.Options
		if options == nil {
			options = []string{}
		}

		rq := dto.ReviewQuestion{
			QuestionIndex: i,
			Question:      question.Question,
			Options:       options,
			CorrectAnswer: question.CorrectAnswer,
		}
		if answer, ok := byIndex[i]; ok {
			rq.StudentAnswer = answer.Answer
			rq.IsCorrect = answersEqual(answer.Answer, question.CorrectAnswer)
		}
		review[i] = rq
	}

	return review
}

func (s *HistoryService) subject(ctx context.Context, caches *historyCaches, id uuid.UUID) *models.Subject {
	if cached, ok := caches.subjects[id]; ok {
		return cached
	}
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		subject = nil
	}
	caches.subjects[id] = subject
	return subject
}

func (s *HistoryService) topic(ctx context.Context, caches *historyCaches, id uuid.UUID) *models.Topic {
	if cached, ok := caches.topics[id]; ok {
		return cached
	}
	topic, err := s.topics.GetByID(ctx, id)
	if err != nil {
		topic = nil
	}
	caches.topics[id] = topic
	return topic
}

func (s *HistoryService) user(ctx context.Context, caches *historyCaches, id uuid.UUID) *models.User {
	if cached, ok := caches.users[id]; ok {
		return cached
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		user = nil
	}
	caches.users[id] = user
	return user
}
