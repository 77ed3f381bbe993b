package models

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	TeacherID   uuid.UUID `db:"teacher_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Topic struct {
	ID          uuid.UUID `db:"id"`
	SubjectID   uuid.UUID `db:"subject_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	TeacherID   uuid.UUID `db:"teacher_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type SubjectEnrollment struct {
	ID         uuid.UUID `db:"id"`
	SubjectID  uuid.UUID `db:"subject_id"`
	UserID     uuid.UUID `db:"user_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
	EnrolledBy uuid.UUID `db:"enrolled_by"`
}
