package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"aula-rag/internal/models"
)

const examQuestionCount = 10

var (
	// ErrGenerationParse marks model output that is not a valid question array.
	ErrGenerationParse = errors.New("failed to parse generated questions")
	// ErrInvalidQuestionCount marks a parsed array of the wrong length.
	ErrInvalidQuestionCount = errors.New("generated questions have invalid format")
)

var codeFenceRe = regexp.MustCompile("```[a-zA-Z]*\n([\\s\\S]*?)```")

// stripCodeFence unwraps a fenced code block if the model wrapped its JSON in
// one despite the prompt.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		if match := codeFenceRe.FindStringSubmatch(trimmed); len(match) > 1 {
			return strings.TrimSpace(match[1])
		}
	}
	return trimmed
}

// parseExamQuestions validates the model output into exactly ten questions.
func parseExamQuestions(text string) ([]models.Question, error) {
	cleaned := stripCodeFence(text)

	var questions []models.Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationParse, err)
	}

	if len(questions) != examQuestionCount {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", ErrInvalidQuestionCount, examQuestionCount, len(questions))
	}

	return questions, nil
}
