package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scheme-mitra/backend/internal/assembler"
	redisc "github.com/scheme-mitra/backend/internal/cache/redis"
	"github.com/scheme-mitra/backend/internal/llm"
	"github.com/scheme-mitra/backend/internal/metrics"
	"github.com/scheme-mitra/backend/internal/middleware/validation"
	"github.com/scheme-mitra/backend/internal/scheme"
	"github.com/scheme-mitra/backend/internal/session"
	"github.com/scheme-mitra/backend/internal/storage/models"
	"github.com/scheme-mitra/backend/internal/storage/sqlite"
	"github.com/scheme-mitra/backend/pkg/logger"
	"github.com/scheme-mitra/backend/pkg/utils"
)

type ChatHandler struct {
	sessions *session.Manager
	llm      *llm.Client
	db       *sqlite.Client
	cache    *redisc.Client
	replyTTL time.Duration
}

// NewChatHandler wires the chat pipeline. cache may be nil when the
// reply cache is disabled.
func NewChatHandler(sessions *session.Manager, llmClient *llm.Client, db *sqlite.Client, cache *redisc.Client, replyTTL time.Duration) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		llm:      llmClient,
		db:       db,
		cache:    cache,
		replyTTL: replyTTL,
	}
}

type chatRequest struct {
	validation.ChatRequest
	Profile *profilePayload `json:"profile"`
}

type profilePayload struct {
	BusinessType  string   `json:"business_type"`
	BusinessStage string   `json:"business_stage"`
	State         string   `json:"state"`
	IsRural       *bool    `json:"is_rural"`
	Category      string   `json:"category"`
	Gender        string   `json:"gender"`
	Interests     []string `json:"interests"`
}

func (p *profilePayload) toProfile() *scheme.Profile {
	if p == nil {
		return nil
	}
	return &scheme.Profile{
		BusinessType:  p.BusinessType,
		BusinessStage: p.BusinessStage,
		Location:      scheme.Location{State: p.State, IsRural: p.IsRural},
		Category:      p.Category,
		Gender:        p.Gender,
		Interests:     p.Interests,
	}
}

func (p *profilePayload) validate() error {
	if p == nil {
		return nil
	}
	fields := map[string]string{
		"business_type":  p.BusinessType,
		"business_stage": p.BusinessStage,
		"state":          p.State,
		"category":       p.Category,
		"gender":         p.Gender,
	}
	for name, value := range fields {
		if err := validation.ValidateProfileField(name, value); err != nil {
			return err
		}
	}
	for _, interest := range p.Interests {
		if err := validation.ValidateProfileField("interests", interest); err != nil {
			return err
		}
	}
	return nil
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	started := time.Now()

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse chat request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := req.Profile.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	prompt, turnCtx, sess := h.sessions.Turn(req.Message, req.SessionID, req.Language, req.Profile.toProfile())

	reply, mentioned, cached, err := h.generateReply(c.Context(), prompt, req.Message, sess, turnCtx)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to generate reply", zap.Error(err), zap.String("session_id", sess.ID))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Assistant is unavailable, please retry",
		})
	}

	if err := h.sessions.Record(sess.ID, req.Message, reply, mentioned); err != nil {
		// Session can vanish mid-turn if the sweep fires; the reply
		// is still valid for the caller.
		logger.Warn("Failed to record turn", zap.Error(err), zap.String("session_id", sess.ID))
	}

	latency := int(time.Since(started).Milliseconds())
	h.persistTurn(sess.ID, req.Message, reply, mentioned, turnCtx, latency)

	metrics.TurnsTotal.WithLabelValues("ok").Inc()
	metrics.TurnDuration.WithLabelValues("http").Observe(time.Since(started).Seconds())

	return c.JSON(fiber.Map{
		"session_id": sess.ID,
		"reply":      reply,
		"schemes":    schemeRefs(turnCtx.Entities),
		"format":     turnCtx.Format,
		"cached":     cached,
		"latency_ms": latency,
	})
}

// generateReply consults the reply cache for history-independent
// turns before calling the model.
func (h *ChatHandler) generateReply(ctx context.Context, prompt, message string, sess *scheme.Session, turnCtx scheme.TurnContext) (string, []string, bool, error) {
	cacheable := h.cache != nil && len(turnCtx.History) == 0
	var cacheKey string

	if cacheable {
		cacheKey = replyCacheKey(message, sess.Language, sess.Profile)
		if hit, ok, err := h.cache.GetReply(ctx, cacheKey); err == nil && ok {
			metrics.CacheHits.WithLabelValues("reply").Inc()
			return hit.Reply, hit.MentionedIDs, true, nil
		}
		metrics.CacheMisses.WithLabelValues("reply").Inc()
	}

	reply, err := h.llm.GenerateReply(ctx, prompt, message)
	if err != nil {
		return "", nil, false, err
	}

	mentioned := mentionedInReply(reply, turnCtx.Entities)

	if cacheable {
		if err := h.cache.SetReply(ctx, cacheKey, redisc.CachedReply{Reply: reply, MentionedIDs: mentioned}, h.replyTTL); err != nil {
			logger.Warn("Failed to cache reply", zap.Error(err))
		}
	}

	return reply, mentioned, false, nil
}

func (h *ChatHandler) persistTurn(sessionID, userText, reply string, mentioned []string, turnCtx scheme.TurnContext, latencyMS int) {
	if h.db == nil {
		return
	}
	record := &models.TurnRecord{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		UserText:      userText,
		AssistantText: reply,
		MentionedIDs:  mentioned,
		Format:        string(turnCtx.Format),
		EntityCount:   len(turnCtx.Entities),
		LatencyMS:     latencyMS,
		CreatedAt:     time.Now(),
	}
	if err := h.db.InsertTurnRecord(record); err != nil {
		logger.Warn("Failed to persist turn", zap.Error(err))
	}
}

func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	records, err := h.db.GetSessionHistory(sessionID, limit)
	if err != nil {
		logger.Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
	})
}

// replyCacheKey hashes the query together with the language and the
// profile signature. The profile changes ranking and the composed
// prompt, so two users with different profiles must never share a
// cached reply.
func replyCacheKey(message, language string, profile *scheme.Profile) string {
	return utils.HashString(strings.ToLower(message) + "|" + language + "|" + assembler.ProfileSummary(profile))
}

// mentionedInReply maps the model's free text back to entity ids by
// name or short-name match, feeding the next turn's continuity
// signal.
func mentionedInReply(reply string, entities []scheme.Entity) []string {
	lowerReply := strings.ToLower(reply)
	var ids []string
	for _, e := range entities {
		if strings.Contains(lowerReply, strings.ToLower(e.Name)) ||
			(e.ShortName != "" && e.ShortName != e.Name && strings.Contains(reply, e.ShortName)) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

type schemeRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
	URL     string `json:"url,omitempty"`
}

func schemeRefs(entities []scheme.Entity) []schemeRef {
	refs := make([]schemeRef, 0, len(entities))
	for _, e := range entities {
		refs = append(refs, schemeRef{ID: e.ID, Name: e.Name, Summary: e.MinimalSummary, URL: e.URL})
	}
	return refs
}
