package service

import (
	"context"
	"testing"
	"time"

	"aula-rag/internal/models"
	"aula-rag/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type subjectsFixture struct {
	svc      *SubjectService
	subjects *stubSubjectStore
	topics   *stubTopicStore
	files    *memFileStore
	blobs    *memBlobStore
	vectors  *repository.MemoryVectorStore
	indexing *IndexingService
}

func newSubjectsFixture(t *testing.T) *subjectsFixture {
	t.Helper()
	files := newMemFileStore()
	blobs := newMemBlobStore()
	vectors := repository.NewMemoryVectorStore()
	rag := NewRAGService(vectors, newStubEmbedder(3), testRAGConfig(), zap.NewNop())
	indexing := NewIndexingService(files, blobs, NewExtractorService(zap.NewNop()), rag, zap.NewNop())
	fileService := NewFileService(files, blobs, indexing, zap.NewNop())

	subjects := &stubSubjectStore{subjects: make(map[uuid.UUID]*models.Subject)}
	topics := &stubTopicStore{topics: make(map[uuid.UUID]*models.Topic)}
	svc := NewSubjectService(subjects, topics, &stubEnrollmentStore{}, fileService, zap.NewNop())

	return &subjectsFixture{
		svc:      svc,
		subjects: subjects,
		topics:   topics,
		files:    files,
		blobs:    blobs,
		vectors:  vectors,
		indexing: indexing,
	}
}

// addIndexedTopic creates a topic under the subject with one indexed file.
func (f *subjectsFixture) addIndexedTopic(t *testing.T, subjectID uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	topic := &models.Topic{
		ID:        uuid.New(),
		SubjectID: subjectID,
		Name:      "Tema",
		TeacherID: uuid.New(),
		CreatedAt: time.Now(),
	}
	if err := f.topics.Create(ctx, topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	file := addFile(t, f.files, f.blobs, topic.ID, "Contenido del tema.", "text/plain")
	if result := f.indexing.IndexFile(ctx, file); !result.Success {
		t.Fatalf("index: %s", result.Reason)
	}
	return topic.ID
}

func TestDeleteTopic_CleansUpFilesAndVectors(t *testing.T) {
	ctx := context.Background()
	f := newSubjectsFixture(t)
	topicID := f.addIndexedTopic(t, uuid.New())

	if err := f.svc.DeleteTopic(ctx, topicID); err != nil {
		t.Fatalf("delete topic: %v", err)
	}

	if _, ok := f.topics.topics[topicID]; ok {
		t.Error("topic record must be removed")
	}
	remaining, _ := f.files.ListByTopic(ctx, topicID)
	if len(remaining) != 0 {
		t.Errorf("expected no file records, got %d", len(remaining))
	}
	if len(f.blobs.blobs) != 0 {
		t.Errorf("expected no blobs, got %d", len(f.blobs.blobs))
	}
	exists, err := f.vectors.HasNamespace(ctx, topicID.String())
	if err != nil {
		t.Fatalf("has namespace: %v", err)
	}
	if exists {
		t.Error("topic namespace must be removed")
	}
}

func TestDeleteSubject_CleansUpTopics(t *testing.T) {
	ctx := context.Background()
	f := newSubjectsFixture(t)

	subject := &models.Subject{ID: uuid.New(), Name: "Historia", TeacherID: uuid.New(), CreatedAt: time.Now()}
	if err := f.subjects.Create(ctx, subject); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	first := f.addIndexedTopic(t, subject.ID)
	second := f.addIndexedTopic(t, subject.ID)

	if err := f.svc.DeleteSubject(ctx, subject.ID); err != nil {
		t.Fatalf("delete subject: %v", err)
	}

	if _, ok := f.subjects.subjects[subject.ID]; ok {
		t.Error("subject record must be removed")
	}
	if len(f.topics.topics) != 0 {
		t.Errorf("expected no topics, got %d", len(f.topics.topics))
	}
	if len(f.blobs.blobs) != 0 {
		t.Errorf("expected no blobs, got %d", len(f.blobs.blobs))
	}
	for _, topicID := range []uuid.UUID{first, second} {
		if exists, _ := f.vectors.HasNamespace(ctx, topicID.String()); exists {
			t.Errorf("namespace %s must be removed", topicID)
		}
	}
}

func TestDeleteTopic_NoFilesIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newSubjectsFixture(t)

	if err := f.svc.DeleteTopic(ctx, uuid.New()); err != nil {
		t.Errorf("deleting a topic without files must succeed, got %v", err)
	}
}
