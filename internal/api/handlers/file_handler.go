package handlers

import (
	"errors"
	"io"

	"aula-rag/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FileHandler struct {
	fileService    *service.FileService
	subjectService *service.SubjectService
	logger         *zap.Logger
}

func NewFileHandler(fileService *service.FileService, subjectService *service.SubjectService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		subjectService: subjectService,
		logger:         logger,
	}
}

// UploadFile godoc
// @Summary Upload a study material
// @Description Upload a PDF, DOCX or TXT file to a topic; indexing runs in the background
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Topic ID"
// @Param file formData file true "Material file"
// @Security Bearer
// @Success 201 {object} dto.FileResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/topics/{id}/files [post]
func (h *FileHandler) UploadFile(c *fiber.Ctx) error {
	teacherID, err := getUserID(c)
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
			"error": "Failed to upload file",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	fileType := fileHeader.Header.Get("Content-Type")
	resp, err := h.fileService.Upload(c.Context(), topicID, subjectID, teacherID, fileHeader.Filename, fileType, data)
	if err != nil {
		h.logger.Error("Failed to upload file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload file",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListTopicFiles godoc
// @Summary List a topic's files
// @Tags files
// @Produce json
// @Param id path string true "Topic ID"
// @Security Bearer
// @Success 200 {array} dto.FileResponse
// @Router /api/v1/topics/{id}/files [get]
func (h *FileHandler) ListTopicFiles(c *fiber.Ctx) error {
	topicID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic ID",
		})
	}

	resp, err := h.fileService.ListByTopic(c.Context(), topicID)
	if err != nil {
		h.logger.Error("Failed to list files", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list files",
		})
	}

	return c.JSON(resp)
}

// ListSubjectFiles godoc
// @Summary List all files of a subject
// @Tags files
// @Produce json
// @Param id path string true "Subject ID"
// @Security Bearer
// @Success 200 {array} dto.FileResponse
// @Router /api/v1/subjects/{id}/files [get]
func (h *FileHandler) ListSubjectFiles(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	resp, err := h.fileService.ListBySubject(c.Context(), subjectID)
	if err != nil {
		h.logger.Error("Failed to list files", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list files",
		})
	}

	return c.JSON(resp)
}

// DeleteFile godoc
// @Summary Delete a study material
// @Description Removes the file's embeddings, blob and record
// @Tags files
// @Param id path string true "File ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *fiber.Ctx) error {
	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file ID",
		})
	}

	if err := h.fileService.Delete(c.Context(), fileID); err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "File not found",
			})
		}
		h.logger.Error("Failed to delete file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete file",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReindexTopic godoc
// @Summary Re-index all files of a topic
// @Tags files
// @Produce json
// @Param id path string true "Topic ID"
// @Security Bearer
// @Success 200 {array} dto.FileIndexResultResponse
// @Router /api/v1/topics/{id}/reindex [post]
func (h *FileHandler) ReindexTopic(c *fiber.Ctx) error {
	topicID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic ID",
		})
	}

	results, err := h.fileService.ReindexTopic(c.Context(), topicID)
	if err != nil {
		h.logger.Error("Failed to reindex topic", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reindex topic",
		})
	}

	return c.JSON(results)
}
