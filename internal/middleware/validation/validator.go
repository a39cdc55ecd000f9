package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

type chatRequest struct {
	Message string `json:"message"`
	History []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
}

type Config struct {
	MaxMessageLength int
	MaxHistoryTurns  int
	Logger           *zap.Logger
}

// Middleware rejects malformed chat requests at the boundary so the engine
// only ever sees non-empty messages and well-formed transcripts.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxMessageLength == 0 {
		cfg.MaxMessageLength = 5000
	}
	if cfg.MaxHistoryTurns == 0 {
		cfg.MaxHistoryTurns = 200
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || !strings.HasSuffix(c.Path(), "/chat") {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "application/json") {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		if strings.TrimSpace(req.Message) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Message is required and must be a non-empty string",
			})
		}
		if len(req.Message) > cfg.MaxMessageLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Message exceeds maximum length",
			})
		}
		if len(req.History) > cfg.MaxHistoryTurns {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "History exceeds maximum number of turns",
			})
		}

		for _, turn := range req.History {
			if !validRoles[turn.Role] {
				cfg.Logger.Warn("Rejected invalid history role",
					zap.String("role", turn.Role),
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "History role must be one of user, assistant, system",
				})
			}
			if strings.TrimSpace(turn.Content) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "History turn content must be a non-empty string",
				})
			}
		}

		return c.Next()
	}
}
