package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/scheme-mitra/backend/internal/session"
	"github.com/scheme-mitra/backend/pkg/logger"

	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

// GetSummary returns a condensed view of a conversation, suitable for
// handing off to a human agent or a follow-up channel.
func (h *SessionHandler) GetSummary(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	summary, err := h.sessions.Summarize(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		logger.Error("Failed to summarize session", zap.Error(err), zap.String("session_id", sessionID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to summarize session",
		})
	}

	return c.JSON(summary)
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	if _, err := h.sessions.Get(sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	h.sessions.Delete(sessionID)
	logger.Info("Session deleted", zap.String("session_id", sessionID))

	return c.JSON(fiber.Map{
		"deleted": sessionID,
	})
}
