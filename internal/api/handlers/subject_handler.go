package handlers

import (
	"errors"

	"aula-rag/internal/dto"
	"aula-rag/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubjectHandler struct {
	subjectService *service.SubjectService
	logger         *zap.Logger
}

func NewSubjectHandler(subjectService *service.SubjectService, logger *zap.Logger) *SubjectHandler {
	return &SubjectHandler{
		subjectService: subjectService,
		logger:         logger,
	}
}

// CreateSubject godoc
// @Summary Create a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param request body dto.CreateSubjectRequest true "Subject data"
// @Security Bearer
// @Success 201 {object} dto.SubjectResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/subjects [post]
func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	resp, err := h.subjectService.CreateSubject(c.Context(), teacherID, &req)
	if err != nil {
		h.logger.Error("Failed to create subject", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create subject",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListSubjects godoc
// @Summary List the caller's subjects
// @Description Teachers get their own subjects, students their enrollments
// @Tags subjects
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.SubjectResponse
// @Router /api/v1/subjects [get]
func (h *SubjectHandler) ListSubjects(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	role, _ := c.Locals("role").(string)

	var resp []*dto.SubjectResponse
	if role == "teacher" || role == "admin" {
		resp, err = h.subjectService.ListSubjectsByTeacher(c.Context(), userID)
	} else {
		resp, err = h.subjectService.ListStudentSubjects(c.Context(), userID)
	}
	if err != nil {
		h.logger.Error("Failed to list subjects", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list subjects",
		})
	}

	return c.JSON(resp)
}

// GetSubject godoc
// @Summary Get a subject
// @Tags subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Security Bearer
// @Success 200 {object} dto.SubjectResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/subjects/{id} [get]
func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	resp, err := h.subjectService.GetSubject(c.Context(), subjectID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subject not found",
		})
	}

	return c.JSON(resp)
}

// DeleteSubject godoc
// @Summary Delete a subject
// @Tags subjects
// @Param id path string true "Subject ID"
// @Security Bearer
// @Success 204
// @Router /api/v1/subjects/{id} [delete]
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	if err := h.subjectService.DeleteSubject(c.Context(), subjectID); err != nil {
		h.logger.Error("Failed to delete subject", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete subject",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateTopic godoc
// @Summary Create a topic in a subject
// @Tags topics
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param request body dto.CreateTopicRequest true "Topic data"
// @Security Bearer
// @Success 201 {object} dto.TopicResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/subjects/{id}/topics [post]
func (h *SubjectHandler) CreateTopic(c *fiber.Ctx) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	var req dto.CreateTopicRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	resp, err := h.subjectService.CreateTopic(c.Context(), subjectID, teacherID, &req)
	if err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Subject not found",
			})
		}
		h.logger.Error("Failed to create topic", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create topic",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListTopics godoc
// @Summary List a subject's topics
// @Tags topics
// @Produce json
// @Param id path string true "Subject ID"
// @Security Bearer
// @Success 200 {array} dto.TopicResponse
// @Router /api/v1/subjects/{id}/topics [get]
func (h *SubjectHandler) ListTopics(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	resp, err := h.subjectService.ListTopicsBySubject(c.Context(), subjectID)
	if err != nil {
		h.logger.Error("Failed to list topics", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list topics",
		})
	}

	return c.JSON(resp)
}

// DeleteTopic godoc
// @Summary Delete a topic
// @Tags topics
// @Param id path string true "Topic ID"
// @Security Bearer
// @Success 204
// @Router /api/v1/topics/{id} [delete]
func (h *SubjectHandler) DeleteTopic(c *fiber.Ctx) error {
	topicID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic ID",
		})
	}

	if err := h.subjectService.DeleteTopic(c.Context(), topicID); err != nil {
		h.logger.Error("Failed to delete topic", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete topic",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// EnrollStudent godoc
// @Summary Enroll a student in a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param request body dto.EnrollRequest true "Student to enroll"
// @Security Bearer
// @Success 201 {object} dto.EnrollmentResponse
// @Router /api/v1/subjects/{id}/enrollments [post]
func (h *SubjectHandler) EnrollStudent(c *fiber.Ctx) error {
	enrolledBy, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	resp, err := h.subjectService.EnrollStudent(c.Context(), subjectID, userID, enrolledBy)
	if err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Subject not found",
			})
		}
		h.logger.Error("Failed to enroll student", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to enroll student",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListEnrollments godoc
// @Summary List a subject's enrollments
// @Tags subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Security Bearer
// @Success 200 {array} dto.EnrollmentResponse
// @Router /api/v1/subjects/{id}/enrollments [get]
func (h *SubjectHandler) ListEnrollments(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	resp, err := h.subjectService.ListEnrollments(c.Context(), subjectID)
	if err != nil {
		h.logger.Error("Failed to list enrollments", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list enrollments",
		})
	}

	return c.JSON(resp)
}

// Unenroll godoc
// @Summary Remove a student from a subject
// @Tags subjects
// @Param id path string true "Subject ID"
// @Param userId path string true "User ID"
// @Security Bearer
// @Success 204
// @Router /api/v1/subjects/{id}/enrollments/{userId} [delete]
func (h *SubjectHandler) Unenroll(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	if err := h.subjectService.Unenroll(c.Context(), subjectID, userID); err != nil {
		h.logger.Error("Failed to remove enrollment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove enrollment",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
