package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/scheme-mitra/backend/internal/metrics"
	"github.com/scheme-mitra/backend/internal/middleware/validation"
	"github.com/scheme-mitra/backend/internal/scheme"
	"github.com/scheme-mitra/backend/pkg/logger"
)

type WebSocketHandler struct {
	chat *ChatHandler
}

func NewWebSocketHandler(chat *ChatHandler) *WebSocketHandler {
	return &WebSocketHandler{
		chat: chat,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			Message   string `json:"message"`
			SessionID string `json:"session_id"`
			Language  string `json:"language"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "chat" {
			continue
		}

		req := validation.ChatRequest{
			Message:   msg.Message,
			SessionID: msg.SessionID,
			Language:  msg.Language,
		}
		if err := req.Validate(); err != nil {
			h.sendError(c, err.Error())
			continue
		}

		err = h.streamReply(c, req)
		if err != nil {
			logger.Error("Failed to stream reply", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *WebSocketHandler) streamReply(c *websocket.Conn, req validation.ChatRequest) error {
	ctx := context.Background()
	started := time.Now()

	h.sendChunk(c, "status", "Finding relevant schemes...")

	prompt, turnCtx, sess := h.chat.sessions.Turn(req.Message, req.SessionID, req.Language, nil)

	reply, mentioned, _, err := h.chat.generateReply(ctx, prompt, req.Message, sess, turnCtx)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := h.chat.sessions.Record(sess.ID, req.Message, reply, mentioned); err != nil {
		logger.Warn("Failed to record turn", zap.Error(err), zap.String("session_id", sess.ID))
	}

	latency := int(time.Since(started).Milliseconds())
	h.chat.persistTurn(sess.ID, req.Message, reply, mentioned, turnCtx, latency)

	words := splitIntoWords(reply)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		err := h.sendChunk(c, "chunk", chunk)
		if err != nil {
			return err
		}
	}

	metrics.TurnsTotal.WithLabelValues("ok").Inc()
	metrics.TurnDuration.WithLabelValues("ws").Observe(time.Since(started).Seconds())

	return h.sendComplete(c, sess.ID, turnCtx, latency)
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	msg := map[string]interface{}{
		"type":    msgType,
		"content": content,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendComplete(c *websocket.Conn, sessionID string, turnCtx scheme.TurnContext, latencyMS int) error {
	msg := map[string]interface{}{
		"type":       "complete",
		"session_id": sessionID,
		"schemes":    schemeRefs(turnCtx.Entities),
		"latency_ms": latencyMS,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
