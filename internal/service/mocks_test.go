package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"aula-rag/internal/models"
	"aula-rag/internal/repository"

	"github.com/google/uuid"
)

// stubEmbedder returns canned vectors by exact text, or a zero-ish default.
type stubEmbedder struct {
	dimension int
	vectors   map[string][]float32
	fallback  []float32
	err       error
}

func newStubEmbedder(dimension int) *stubEmbedder {
	fallback := make([]float32, dimension)
	fallback[dimension-1] = 1
	return &stubEmbedder{
		dimension: dimension,
		vectors:   make(map[string][]float32),
		fallback:  fallback,
	}
}

func (e *stubEmbedder) set(text string, vector []float32) {
	e.vectors[text] = vector
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = e.fallback
		}
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int { return e.dimension }

// stubGenerator records the prompts it saw and replies with a fixed string.
type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastUser   string
	calls      int
}

func (g *stubGenerator) Complete(_ context.Context, system, user string) (string, error) {
	g.calls++
	g.lastSystem = system
	g.lastUser = user
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

// memBlobStore is an in-memory storage.BlobStore.
type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	n     int
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) Put(data []byte, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	key := fmt.Sprintf("blob-%d%s", s.n, ext)
	s.blobs[key] = data
	return key, nil
}

func (s *memBlobStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

func (s *memBlobStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memBlobStore) URL(key string) string { return "/uploads/" + key }

// memFileStore is an in-memory FileStore.
type memFileStore struct {
	mu    sync.Mutex
	files map[uuid.UUID]*models.TopicFile
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[uuid.UUID]*models.TopicFile)}
}

func (s *memFileStore) Create(_ context.Context, file *models.TopicFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *file
	s.files[file.ID] = &cp
	return nil
}

func (s *memFileStore) GetByID(_ context.Context, id uuid.UUID) (*models.TopicFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	cp := *f
	return &cp, nil
}

func (s *memFileStore) ListByTopic(_ context.Context, topicID uuid.UUID) ([]*models.TopicFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TopicFile
	for _, f := range s.files {
		if f.TopicID == topicID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memFileStore) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]*models.TopicFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TopicFile
	for _, f := range s.files {
		if f.SubjectID == subjectID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memFileStore) MarkIndexed(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		f.IndexedAt = &at
	}
	return nil
}

func (s *memFileStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
	return nil
}

// memExamStore is an in-memory ExamStore and ResultStore with the same
// at-most-one-result semantics as the Postgres repository.
type memExamStore struct {
	mu      sync.Mutex
	exams   map[uuid.UUID]*models.Exam
	results []*models.ExamResult
}

func newMemExamStore() *memExamStore {
	return &memExamStore{exams: make(map[uuid.UUID]*models.Exam)}
}

func (s *memExamStore) CreateExam(_ context.Context, exam *models.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *exam
	s.exams[exam.ID] = &cp
	return nil
}

func (s *memExamStore) GetExamByID(_ context.Context, id uuid.UUID) (*models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam, ok := s.exams[id]
	if !ok {
		return nil, errors.New("exam not found")
	}
	cp := *exam
	return &cp, nil
}

func (s *memExamStore) RecordResult(_ context.Context, result *models.ExamResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam, ok := s.exams[result.ExamID]
	if !ok {
		return errors.New("exam not found")
	}
	if exam.Status != models.ExamStatusPending {
		return repository.ErrExamNotPending
	}
	exam.Status = models.ExamStatusCompleted
	cp := *result
	s.results = append(s.results, &cp)
	return nil
}

func (s *memExamStore) ListResultsByUser(_ context.Context, userID uuid.UUID) ([]*models.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ExamResult
	for _, r := range s.results {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memExamStore) ListResultsByTopic(_ context.Context, topicID uuid.UUID) ([]*models.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ExamResult
	for _, r := range s.results {
		if r.TopicID == topicID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memExamStore) deleteExam(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.exams, id)
}

// stub stores for history lookups and subject CRUD.
type stubSubjectStore struct{ subjects map[uuid.UUID]*models.Subject }

func (s *stubSubjectStore) GetByID(_ context.Context, id uuid.UUID) (*models.Subject, error) {
	if sub, ok := s.subjects[id]; ok {
		return sub, nil
	}
	return nil, errors.New("subject not found")
}

func (s *stubSubjectStore) Create(_ context.Context, subject *models.Subject) error {
	s.subjects[subject.ID] = subject
	return nil
}

func (s *stubSubjectStore) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]*models.Subject, error) {
	var out []*models.Subject
	for _, sub := range s.subjects {
		if sub.TeacherID == teacherID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *stubSubjectStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.subjects, id)
	return nil
}

type stubTopicStore struct{ topics map[uuid.UUID]*models.Topic }

func (s *stubTopicStore) GetByID(_ context.Context, id uuid.UUID) (*models.Topic, error) {
	if t, ok := s.topics[id]; ok {
		return t, nil
	}
	return nil, errors.New("topic not found")
}

func (s *stubTopicStore) Create(_ context.Context, topic *models.Topic) error {
	s.topics[topic.ID] = topic
	return nil
}

func (s *stubTopicStore) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]*models.Topic, error) {
	var out []*models.Topic
	for _, t := range s.topics {
		if t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTopicStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.topics, id)
	return nil
}

type stubEnrollmentStore struct{ enrollments []*models.SubjectEnrollment }

func (s *stubEnrollmentStore) Create(_ context.Context, e *models.SubjectEnrollment) error {
	s.enrollments = append(s.enrollments, e)
	return nil
}

func (s *stubEnrollmentStore) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]*models.SubjectEnrollment, error) {
	var out []*models.SubjectEnrollment
	for _, e := range s.enrollments {
		if e.SubjectID == subjectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubEnrollmentStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.SubjectEnrollment, error) {
	var out []*models.SubjectEnrollment
	for _, e := range s.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubEnrollmentStore) Delete(_ context.Context, subjectID, userID uuid.UUID) error {
	kept := s.enrollments[:0]
	for _, e := range s.enrollments {
		if e.SubjectID != subjectID || e.UserID != userID {
			kept = append(kept, e)
		}
	}
	s.enrollments = kept
	return nil
}

type stubUserStore struct{ users map[uuid.UUID]*models.User }

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}
