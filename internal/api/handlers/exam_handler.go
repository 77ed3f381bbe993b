package handlers

import (
	"errors"

	"aula-rag/internal/dto"
	"aula-rag/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExamHandler struct {
	examService    *service.ExamService
	historyService *service.HistoryService
	subjectService *service.SubjectService
	logger         *zap.Logger
}

func NewExamHandler(examService *service.ExamService, historyService *service.HistoryService, subjectService *service.SubjectService, logger *zap.Logger) *ExamHandler {
	return &ExamHandler{
		examService:    examService,
		historyService: historyService,
		subjectService: subjectService,
		logger:         logger,
	}
}

// GenerateExam godoc
// @Summary Generate an exam for a topic
// @Description Produces 10 multiple-choice questions from the topic's indexed materials
// @Tags exams
// @Produce json
// @Param id path string true "Topic ID"
// @Security Bearer
// @Success 201 {object} dto.GenerateExamResponse
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/topics/{id}/exams [post]
func (h *ExamHandler) GenerateExam(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	topicID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic ID",
		})
	}

	topic, err := h.subjectService.GetTopic(c.Context(), topicID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Topic not found",
		})
	}

	subjectID, err := uuid.Parse(topic.SubjectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate exam",
		})
	}

	resp, err := h.examService.GenerateExam(c.Context(), topicID, subjectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoMaterial):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "No indexed material available for this topic",
			})
		case errors.Is(err, service.ErrGenerationParse), errors.Is(err, service.ErrInvalidQuestionCount):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to generate valid exam questions",
			})
		}
		h.logger.Error("Failed to generate exam", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate exam",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SubmitAnswers godoc
// @Summary Submit exam answers
// @Description Grades the submission and records the result; an exam can be submitted once
// @Tags exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param request body dto.SubmitAnswersRequest true "Answers"
// @Security Bearer
// @Success 200 {object} dto.SubmitAnswersResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/exams/{id}/submit [post]
func (h *ExamHandler) SubmitAnswers(c *fiber.Ctx) error {
	examID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid exam ID",
		})
	}

	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.examService.SubmitAnswers(c.Context(), examID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Exam not found",
			})
		case errors.Is(err, service.ErrExamAlreadyCompleted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Exam already completed",
			})
		}
		h.logger.Error("Failed to submit answers", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit answers",
		})
	}

	return c.JSON(resp)
}

// GetExamHistory godoc
// @Summary Get the caller's exam history
// @Description Completed exams with per-question review, newest first
// @Tags exams
// @Produce json
// @Param subject_id query string false "Filter by subject"
// @Param topic_id query string false "Filter by topic"
// @Security Bearer
// @Success 200 {array} dto.ExamHistoryEntry
// @Router /api/v1/exams/history [get]
func (h *ExamHandler) GetExamHistory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var subjectID, topicID *uuid.UUID
	if raw := c.Query("subject_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid subject ID",
			})
		}
		subjectID = &id
	}
	if raw := c.Query("topic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid topic ID",
			})
		}
		topicID = &id
	}

	entries, err := h.historyService.GetStudentExamHistory(c.Context(), userID, subjectID, topicID)
	if err != nil {
		h.logger.Error("Failed to get exam history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get exam history",
		})
	}

	return c.JSON(entries)
}

// GetTopicResults godoc
// @Summary Get all exam results for a topic
// @Description Teacher view of every student's results with identities attached
// @Tags exams
// @Produce json
// @Param id path string true "Topic ID"
// @Security Bearer
// @Success 200 {array} dto.ExamHistoryEntry
// @Router /api/v1/topics/{id}/results [get]
func (h *ExamHandler) GetTopicResults(c *fiber.Ctx) error {
	topicID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic ID",
		})
	}

	entries, err := h.historyService.GetExamResultsByTopic(c.Context(), topicID)
	if err != nil {
		h.logger.Error("Failed to get topic results", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get topic results",
		})
	}

	return c.JSON(entries)
}
