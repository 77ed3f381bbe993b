package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"aula-rag/internal/models"
)

func validQuestionsJSON(n int) string {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			Type:          models.QuestionTypeMultipleChoice,
			Question:      fmt.Sprintf("Pregunta %d", i+1),
			Options:       []string{"Opción A", "Opción B", "Opción C", "Opción D"},
			CorrectAnswer: "Opción A",
			Points:        1,
		}
	}
	data, _ := json.Marshal(questions)
	return string(data)
}

func TestParseExamQuestions(t *testing.T) {
	questions, err := parseExamQuestions(validQuestionsJSON(10))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}
	if questions[0].Type != models.QuestionTypeMultipleChoice {
		t.Errorf("unexpected type %q", questions[0].Type)
	}
	if len(questions[0].Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(questions[0].Options))
	}
	if questions[0].CorrectAnswer != "Opción A" {
		t.Errorf("unexpected correct answer %v", questions[0].CorrectAnswer)
	}
}

func TestParseExamQuestions_FencedBlock(t *testing.T) {
	wrapped := "```json\n" + validQuestionsJSON(10) + "\n```"
	questions, err := parseExamQuestions(wrapped)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}

	// Fence without a language tag.
	wrapped = "```\n" + validQuestionsJSON(10) + "\n```"
	if _, err := parseExamQuestions(wrapped); err != nil {
		t.Fatalf("parse bare fence: %v", err)
	}
}

func TestParseExamQuestions_InvalidJSON(t *testing.T) {
	_, err := parseExamQuestions("this is not json")
	if !errors.Is(err, ErrGenerationParse) {
		t.Errorf("expected ErrGenerationParse, got %v", err)
	}
}

func TestParseExamQuestions_WrongCount(t *testing.T) {
	for _, n := range []int{0, 7, 11} {
		_, err := parseExamQuestions(validQuestionsJSON(n))
		if !errors.Is(err, ErrInvalidQuestionCount) {
			t.Errorf("count %d: expected ErrInvalidQuestionCount, got %v", n, err)
		}
	}
}

func TestStripCodeFence_PlainTextUntouched(t *testing.T) {
	text := "  [1, 2, 3]  "
	if got := stripCodeFence(text); got != strings.TrimSpace(text) {
		t.Errorf("expected trimmed passthrough, got %q", got)
	}
}
