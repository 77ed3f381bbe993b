package dto

import "aula-rag/internal/models"

type GenerateExamResponse struct {
	ExamID       string            `json:"exam_id"`
	Questions    []models.Question `json:"questions"`
	HasContext   bool              `json:"has_context"`
	EntriesFound int               `json:"entries_found"`
}

type SubmitAnswersRequest struct {
	Answers []models.Answer `json:"answers"`
}

type SubmitAnswersResponse struct {
	ResultID       string  `json:"result_id"`
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     int     `json:"percentage"`
}

// ReviewQuestion is a per-question correctness row recomputed for review
// views using normalized answer equality.
type ReviewQuestion struct {
	QuestionIndex int      `json:"question_index"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer any      `json:"correct_answer"`
	StudentAnswer any      `json:"student_answer"`
	IsCorrect     bool     `json:"is_correct"`
}

type ExamRef struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	TopicID   string `json:"topic_id"`
	CreatedAt string `json:"created_at"`
}

type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ResultSummary struct {
	ID             string  `json:"id"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     int     `json:"percentage"`
	CorrectAnswers int     `json:"correct_answers"`
	CompletedAt    string  `json:"completed_at"`
}

type StudentRef struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ExamHistoryEntry joins a result with its exam, subject and topic. Subject
// and Topic are nil when the linked record has been deleted. Student is only
// populated in the teacher-facing view.
type ExamHistoryEntry struct {
	Exam      ExamRef          `json:"exam"`
	Subject   *NamedRef        `json:"subject"`
	Topic     *NamedRef        `json:"topic"`
	Result    ResultSummary    `json:"result"`
	Questions []ReviewQuestion `json:"questions"`
	Student   *StudentRef      `json:"student,omitempty"`
}
