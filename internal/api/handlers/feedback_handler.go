package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/scheme-mitra/backend/internal/storage/models"
	"github.com/scheme-mitra/backend/internal/storage/sqlite"
	"github.com/scheme-mitra/backend/pkg/logger"
)

type FeedbackHandler struct {
	db *sqlite.Client
}

func NewFeedbackHandler(db *sqlite.Client) *FeedbackHandler {
	return &FeedbackHandler{
		db: db,
	}
}

type feedbackRequest struct {
	TurnID  string `json:"turn_id"`
	Helpful bool   `json:"helpful"`
	Comment string `json:"comment"`
}

func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.TurnID = strings.TrimSpace(req.TurnID)
	if req.TurnID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "turn_id is required",
		})
	}
	if len(req.Comment) > 1000 {
		req.Comment = req.Comment[:1000]
	}

	feedback := &models.Feedback{
		TurnID:    req.TurnID,
		Helpful:   req.Helpful,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	if err := h.db.StoreFeedback(feedback); err != nil {
		logger.Error("Failed to store feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"accepted": true,
	})
}
