package service

import (
	"context"
	"errors"
	"time"

	"aula-rag/internal/dto"
	"aula-rag/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTopicNotFound   = errors.New("topic not found")
)

// Subjects is the full subject persistence surface used by the CRUD layer.
type Subjects interface {
	SubjectStore
	Create(ctx context.Context, subject *models.Subject) error
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*models.Subject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Topics is the full topic persistence surface used by the CRUD layer.
type Topics interface {
	TopicStore
	Create(ctx context.Context, topic *models.Topic) error
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*models.Topic, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Enrollments links students to subjects.
type Enrollments interface {
	Create(ctx context.Context, e *models.SubjectEnrollment) error
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*models.SubjectEnrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.SubjectEnrollment, error)
	Delete(ctx context.Context, subjectID, userID uuid.UUID) error
}

// FileCleanup tears down a topic's stored files, blobs and embeddings
// included. Implemented by FileService.
type FileCleanup interface {
	DeleteByTopic(ctx context.Context, topicID uuid.UUID) error
}

// SubjectService is the thin CRUD layer over subjects, topics and
// enrollments. Ownership fields come from the authenticated caller.
type SubjectService struct {
	subjects    Subjects
	topics      Topics
	enrollments Enrollments
	files       FileCleanup
	logger      *zap.Logger
}

func NewSubjectService(subjects Subjects, topics Topics, enrollments Enrollments, files FileCleanup, logger *zap.Logger) *SubjectService {
	return &SubjectService{
		subjects:    subjects,
		topics:      topics,
		enrollments: enrollments,
		files:       files,
		logger:      logger,
	}
}

func (s *SubjectService) CreateSubject(ctx context.Context, teacherID uuid.UUID, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	now := time.Now()
	subject := &models.Subject{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   teacherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}

	return subjectResponse(subject), nil
}

func (s *SubjectService) GetSubject(ctx context.Context, id uuid.UUID) (*dto.SubjectResponse, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return nil, ErrSubjectNotFound
	}
	return subjectResponse(subject), nil
}

func (s *SubjectService) ListSubjectsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*dto.SubjectResponse, error) {
	subjects, err := s.subjects.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SubjectResponse, len(subjects))
	for i, subject := range subjects {
		responses[i] = subjectResponse(subject)
	}
	return responses, nil
}

// DeleteSubject cleans up every topic's files before dropping the subject.
// Enrollments go with the subject row.
func (s *SubjectService) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	topics, err := s.topics.ListBySubject(ctx, id)
	if err != nil {
		return err
	}
	for _, topic := range topics {
		if err := s.DeleteTopic(ctx, topic.ID); err != nil {
			return err
		}
	}
	return s.subjects.Delete(ctx, id)
}

func (s *SubjectService) CreateTopic(ctx context.Context, subjectID, teacherID uuid.UUID, req *dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		return nil, ErrSubjectNotFound
	}

	now := time.Now()
	topic := &models.Topic{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   teacherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, err
	}

	return topicResponse(topic), nil
}

func (s *SubjectService) GetTopic(ctx context.Context, id uuid.UUID) (*dto.TopicResponse, error) {
	topic, err := s.topics.GetByID(ctx, id)
	if err != nil {
		return nil, ErrTopicNotFound
	}
	return topicResponse(topic), nil
}

func (s *SubjectService) ListTopicsBySubject(ctx context.Context, subjectID uuid.UUID) ([]*dto.TopicResponse, error) {
	topics, err := s.topics.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TopicResponse, len(topics))
	for i, topic := range topics {
		responses[i] = topicResponse(topic)
	}
	return responses, nil
}

// DeleteTopic removes the topic's files, blobs and vector namespace before
// dropping the record, mirroring the per-file deletion order.
func (s *SubjectService) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	if err := s.files.DeleteByTopic(ctx, id); err != nil {
		return err
	}
	return s.topics.Delete(ctx, id)
}

func (s *SubjectService) EnrollStudent(ctx context.Context, subjectID, userID, enrolledBy uuid.UUID) (*dto.EnrollmentResponse, error) {
	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		return nil, ErrSubjectNotFound
	}

	enrollment := &models.SubjectEnrollment{
		ID:         uuid.New(),
		SubjectID:  subjectID,
		UserID:     userID,
		EnrolledAt: time.Now(),
		EnrolledBy: enrolledBy,
	}

	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	return enrollmentResponse(enrollment), nil
}

func (s *SubjectService) ListEnrollments(ctx context.Context, subjectID uuid.UUID) ([]*dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.EnrollmentResponse, len(enrollments))
	for i, e := range enrollments {
		responses[i] = enrollmentResponse(e)
	}
	return responses, nil
}

// ListStudentSubjects returns the subjects a student is enrolled in.
func (s *SubjectService) ListStudentSubjects(ctx context.Context, userID uuid.UUID) ([]*dto.SubjectResponse, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SubjectResponse, 0, len(enrollments))
	for _, e := range enrollments {
		subject, err := s.subjects.GetByID(ctx, e.SubjectID)
		if err != nil {
			continue
		}
		responses = append(responses, subjectResponse(subject))
	}
	return responses, nil
}

func (s *SubjectService) Unenroll(ctx context.Context, subjectID, userID uuid.UUID) error {
	return s.enrollments.Delete(ctx, subjectID, userID)
}

func subjectResponse(subject *models.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:          subject.ID.String(),
		Name:        subject.Name,
		Description: subject.Description,
		TeacherID:   subject.TeacherID.String(),
		CreatedAt:   subject.CreatedAt.Format(time.RFC3339),
	}
}

func topicResponse(topic *models.Topic) *dto.TopicResponse {
	return &dto.TopicResponse{
		ID:          topic.ID.String(),
		SubjectID:   topic.SubjectID.String(),
		Name:        topic.Name,
		Description: topic.Description,
		TeacherID:   topic.TeacherID.String(),
		CreatedAt:   topic.CreatedAt.Format(time.RFC3339),
	}
}

func enrollmentResponse(e *models.SubjectEnrollment) *dto.EnrollmentResponse {
	return &dto.EnrollmentResponse{
		ID:         e.ID.String(),
		SubjectID:  e.SubjectID.String(),
		UserID:     e.UserID.String(),
		EnrolledAt: e.EnrolledAt.Format(time.RFC3339),
	}
}
