package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/JoeyRudd/ai-fitness-coach/internal/coach"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
)

type WebSocketHandler struct {
	engine *coach.Engine
}

func NewWebSocketHandler(engine *coach.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

// HandleConnection serves one chat session: each inbound message carries the
// full transcript, and the reply is streamed back word by word.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type    string       `json:"type"`
			Message string       `json:"message"`
			History []coach.Turn `json:"history"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "chat" {
			continue
		}
		if msg.Message == "" {
			h.sendError(c, "Message is required")
			continue
		}

		history := append(msg.History, coach.Turn{Role: coach.RoleUser, Content: msg.Message})
		if err := h.streamResponse(c, history); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, history []coach.Turn) error {
	resp := h.engine.Respond(context.Background(), history)

	words := splitIntoWords(resp.Response)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.sendChunk(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":              "complete",
		"intent":            resp.Intent,
		"profile":           resp.Profile,
		"tdee":              resp.TDEE,
		"missing":           resp.Missing,
		"asked_this_intent": resp.AskedThisIntent,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
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
