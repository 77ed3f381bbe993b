package handlers

import (
	"encoding/json"

	"aula-rag/internal/service"
	"aula-rag/pkg/webhook"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// clerkEvent is the identity provider's webhook envelope. Only the user sync
// events are handled; everything else is acknowledged and dropped.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

type WebhookHandler struct {
	verifier    *webhook.Verifier
	authService *service.AuthService
	logger      *zap.Logger
}

func NewWebhookHandler(verifier *webhook.Verifier, authService *service.AuthService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:    verifier,
		authService: authService,
		logger:      logger,
	}
}

// HandleClerk godoc
// @Summary Identity provider webhook
// @Description Verifies the svix signature and syncs user.created/user.updated events
// @Tags webhooks
// @Accept json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /webhooks/clerk [post]
func (h *WebhookHandler) HandleClerk(c *fiber.Ctx) error {
	body := c.Body()

	err := h.verifier.Verify(
		c.Get("svix-id"),
		c.Get("svix-timestamp"),
		c.Get("svix-signature"),
		body,
	)
	if err != nil {
		h.logger.Warn("Webhook verification failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	var event clerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	switch event.Type {
	case "user.created", "user.updated":
		email := ""
		if len(event.Data.EmailAddresses) > 0 {
			email = event.Data.EmailAddresses[0].EmailAddress
		}

		if err := h.authService.SyncClerkUser(c.Context(), event.Data.ID, email, event.Data.FirstName, event.Data.LastName); err != nil {
			h.logger.Error("Failed to sync user from webhook",
				zap.String("clerk_id", event.Data.ID),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to sync user",
			})
		}
	default:
		h.logger.Info("Ignoring webhook event", zap.String("type", event.Type))
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
