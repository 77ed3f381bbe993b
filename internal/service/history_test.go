package service

import (
	"context"
	"testing"
	"time"

	"aula-rag/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type historyFixture struct {
	svc       *HistoryService
	exams     *memExamStore
	subjectID uuid.UUID
	topicID   uuid.UUID
	studentID uuid.UUID
}

func newHistoryFixture(t *testing.T) *historyFixture {
	t.Helper()
	subjectID := uuid.New()
	topicID := uuid.New()
	studentID := uuid.New()

	exams := newMemExamStore()
	subjects := &stubSubjectStore{subjects: map[uuid.UUID]*models.Subject{
		subjectID: {ID: subjectID, Name: "Historia Universal"},
	}}
	topics := &stubTopicStore{topics: map[uuid.UUID]*models.Topic{
		topicID: {ID: topicID, SubjectID: subjectID, Name: "La Revolución Francesa"},
	}}
	users := &stubUserStore{users: map[uuid.UUID]*models.User{
		studentID: {ID: studentID, FirstName: "Ana", LastName: "García", Email: "ana@example.com"},
	}}

	return &historyFixture{
		svc:       NewHistoryService(exams, subjects, topics, users, zap.NewNop()),
		exams:     exams,
		subjectID: subjectID,
		topicID:   topicID,
		studentID: studentID,
	}
}

// completeExam stores an exam plus its result directly, bypassing grading.
func (f *historyFixture) completeExam(t *testing.T, questions []models.Question, answers []models.Answer, score float64) *models.Exam {
	t.Helper()
	ctx := context.Background()
	exam := &models.Exam{
		ID:        uuid.New(),
		TopicID:   f.topicID,
		SubjectID: f.subjectID,
		UserID:    f.studentID,
		Questions: questions,
		Status:    models.ExamStatusPending,
		CreatedAt: time.Now(),
	}
	if err := f.exams.CreateExam(ctx, exam); err != nil {
		t.Fatalf("create exam: %v", err)
	}
	result := &models.ExamResult{
		ID:             uuid.New(),
		ExamID:         exam.ID,
		TopicID:        exam.TopicID,
		UserID:         exam.UserID,
		Answers:        answers,
		Score:          score,
		TotalQuestions: len(questions),
		CompletedAt:    time.Now(),
	}
	if err := f.exams.RecordResult(ctx, result); err != nil {
		t.Fatalf("record result: %v", err)
	}
	return exam
}

func TestStudentExamHistory(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)
	questions := fourQuestions()
	f.completeExam(t, questions, []models.Answer{
		{QuestionIndex: 0, Answer: " RESPUESTA UNO "},
		{QuestionIndex: 1, Answer: "equivocada"},
	}, 25)

	entries, err := f.svc.GetStudentExamHistory(ctx, f.studentID, nil, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Subject == nil || entry.Subject.Name != "Historia Universal" {
		t.Errorf("unexpected subject %+v", entry.Subject)
	}
	if entry.Topic == nil || entry.Topic.Name != "La Revolución Francesa" {
		t.Errorf("unexpected topic %+v", entry.Topic)
	}
	if entry.Student != nil {
		t.Error("student view must not include the student ref")
	}
	if entry.Result.Percentage != 25 {
		t.Errorf("expected percentage 25, got %d", entry.Result.Percentage)
	}
	if entry.Result.CorrectAnswers != 1 {
		t.Errorf("expected 1 correct answer, got %d", entry.Result.CorrectAnswers)
	}

	if len(entry.Questions) != 4 {
		t.Fatalf("expected 4 review questions, got %d", len(entry.Questions))
	}
	if !entry.Questions[0].IsCorrect {
		t.Error("normalized answer must be marked correct on review")
	}
	if entry.Questions[1].IsCorrect {
		t.Error("wrong answer must stay incorrect")
	}
	if entry.Questions[2].IsCorrect || entry.Questions[2].StudentAnswer != nil {
		t.Errorf("unanswered question must be incorrect with null answer, got %+v", entry.Questions[2])
	}
}

func TestStudentExamHistory_SkipsDeletedExam(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)
	questions := fourQuestions()
	kept := f.completeExam(t, questions, nil, 0)
	deleted := f.completeExam(t, questions, nil, 0)
	f.exams.deleteExam(deleted.ID)

	entries, err := f.svc.GetStudentExamHistory(ctx, f.studentID, nil, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after skipping orphan result, got %d", len(entries))
	}
	if entries[0].Exam.ID != kept.ID.String() {
		t.Errorf("unexpected surviving exam %q", entries[0].Exam.ID)
	}
}

func TestStudentExamHistory_MissingSubjectAndTopic(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)
	exam := &models.Exam{
		ID:        uuid.New(),
		TopicID:   uuid.New(),
		SubjectID: uuid.New(),
		UserID:    f.studentID,
		Questions: fourQuestions(),
		Status:    models.ExamStatusPending,
		CreatedAt: time.Now(),
	}
	if err := f.exams.CreateExam(ctx, exam); err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if err := f.exams.RecordResult(ctx, &models.ExamResult{
		ID:             uuid.New(),
		ExamID:         exam.ID,
		TopicID:        exam.TopicID,
		UserID:         exam.UserID,
		Score:          0,
		TotalQuestions: 4,
		CompletedAt:    time.Now(),
	}); err != nil {
		t.Fatalf("record result: %v", err)
	}

	entries, err := f.svc.GetStudentExamHistory(ctx, f.studentID, nil, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Subject != nil || entries[0].Topic != nil {
		t.Errorf("deleted subject and topic must be null, got %+v / %+v", entries[0].Subject, entries[0].Topic)
	}
}

func TestStudentExamHistory_Filters(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)
	questions := fourQuestions()
	f.completeExam(t, questions, nil, 0)

	otherSubject := uuid.New()
	entries, err := f.svc.GetStudentExamHistory(ctx, f.studentID, &otherSubject, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("subject filter must exclude entry, got %d", len(entries))
	}

	entries, err = f.svc.GetStudentExamHistory(ctx, f.studentID, &f.subjectID, &f.topicID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("matching filters must keep entry, got %d", len(entries))
	}
}

func TestExamResultsByTopic(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)
	f.completeExam(t, fourQuestions(), nil, 75)

	entries, err := f.svc.GetExamResultsByTopic(ctx, f.topicID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	student := entries[0].Student
	if student == nil {
		t.Fatal("teacher view must include the student ref")
	}
	if student.Email != "ana@example.com" || student.FirstName != "Ana" {
		t.Errorf("unexpected student %+v", student)
	}
	if entries[0].Result.CorrectAnswers != 3 {
		t.Errorf("expected 3 correct answers for score 75 of 4, got %d", entries[0].Result.CorrectAnswers)
	}
}
