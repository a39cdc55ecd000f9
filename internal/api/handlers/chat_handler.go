package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeyRudd/ai-fitness-coach/internal/cache/redis"
	"github.com/JoeyRudd/ai-fitness-coach/internal/coach"
	"github.com/JoeyRudd/ai-fitness-coach/internal/metrics"
	"github.com/JoeyRudd/ai-fitness-coach/internal/storage/models"
	"github.com/JoeyRudd/ai-fitness-coach/internal/storage/sqlite"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/utils"
)

type ChatHandler struct {
	engine *coach.Engine
	store  *sqlite.Client
	cache  *redis.Client
}

// NewChatHandler wires the dialogue engine with its optional sidecars. Both
// store and cache may be nil; the handler degrades to engine-only mode.
func NewChatHandler(engine *coach.Engine, store *sqlite.Client, cache *redis.Client) *ChatHandler {
	return &ChatHandler{
		engine: engine,
		store:  store,
		cache:  cache,
	}
}

type chatRequest struct {
	Message string       `json:"message"`
	History []coach.Turn `json:"history"`
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	start := time.Now()

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	history := append(req.History, coach.Turn{Role: coach.RoleUser, Content: req.Message})

	cacheKey := h.cacheKey(req)
	if cached := h.cachedReply(c, cacheKey); cached != nil {
		metrics.ChatTotal.WithLabelValues(cached.Intent, "cache_hit").Inc()
		return c.JSON(cached)
	}

	resp := h.engine.Respond(c.Context(), history)

	elapsed := time.Since(start)
	metrics.ChatTotal.WithLabelValues(resp.Intent, "ok").Inc()
	metrics.ChatDuration.WithLabelValues(resp.Intent).Observe(elapsed.Seconds())

	// Only general-intent replies are cacheable: recall and TDEE answers
	// depend on profile facts that may change next turn.
	if h.cache != nil && resp.Intent == coach.IntentGeneral {
		if err := h.cache.SetReply(c.Context(), cacheKey, &resp); err != nil {
			logger.Warn("Failed to cache reply", zap.Error(err))
		}
	}

	h.recordExchange(req.Message, resp, elapsed)

	return c.JSON(resp)
}

func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	if h.store == nil {
		return c.JSON(fiber.Map{"history": []models.Exchange{}})
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	exchanges, err := h.store.RecentExchanges(limit)
	if err != nil {
		logger.Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load chat history",
		})
	}
	if exchanges == nil {
		exchanges = []models.Exchange{}
	}

	return c.JSON(fiber.Map{"history": exchanges})
}

func (h *ChatHandler) cacheKey(req chatRequest) string {
	var b strings.Builder
	b.WriteString(req.Message)
	for _, t := range req.History {
		b.WriteString("|")
		b.WriteString(t.Role)
		b.WriteString(":")
		b.WriteString(t.Content)
	}
	return utils.HashString(b.String())
}

func (h *ChatHandler) cachedReply(c *fiber.Ctx, key string) *coach.Response {
	if h.cache == nil {
		return nil
	}
	cached, err := h.cache.GetReply(c.Context(), key)
	if err != nil {
		logger.Warn("Reply cache lookup failed", zap.Error(err))
		return nil
	}
	if cached == nil {
		metrics.CacheMisses.Inc()
		return nil
	}
	metrics.CacheHits.Inc()
	return cached
}

func (h *ChatHandler) recordExchange(message string, resp coach.Response, elapsed time.Duration) {
	if h.store == nil {
		return
	}
	ex := &models.Exchange{
		ID:        uuid.NewString(),
		Intent:    resp.Intent,
		Message:   message,
		Response:  resp.Response,
		LatencyMS: elapsed.Milliseconds(),
		CreatedAt: time.Now(),
	}
	if err := h.store.InsertExchange(ex); err != nil {
		logger.Warn("Failed to record exchange", zap.Error(err))
	}
}
