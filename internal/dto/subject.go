package dto

type CreateSubjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SubjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TeacherID   string `json:"teacher_id"`
	CreatedAt   string `json:"created_at"`
}

type CreateTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TopicResponse struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subject_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TeacherID   string `json:"teacher_id"`
	CreatedAt   string `json:"created_at"`
}

type EnrollRequest struct {
	UserID string `json:"user_id"`
}

type EnrollmentResponse struct {
	ID         string `json:"id"`
	SubjectID  string `json:"subject_id"`
	UserID     string `json:"user_id"`
	EnrolledAt string `json:"enrolled_at"`
}
