package models

import (
	"time"

	"github.com/google/uuid"
)

// TopicFile is a teacher-uploaded study material. IndexedAt is set once the
// file's text has been chunked and embedded into the topic's vector namespace.
type TopicFile struct {
	ID         uuid.UUID  `db:"id"`
	TopicID    uuid.UUID  `db:"topic_id"`
	SubjectID  uuid.UUID  `db:"subject_id"`
	TeacherID  uuid.UUID  `db:"teacher_id"`
	FileName   string     `db:"file_name"`
	FileType   string     `db:"file_type"` // declared MIME type
	FileSize   int64      `db:"file_size"`
	StorageKey string     `db:"storage_key"` // blob store reference
	UploadedAt time.Time  `db:"uploaded_at"`
	IndexedAt  *time.Time `db:"indexed_at"`
}
