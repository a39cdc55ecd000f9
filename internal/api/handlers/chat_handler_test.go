package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeyRudd/ai-fitness-coach/internal/coach"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	h := NewChatHandler(coach.NewEngine(nil, nil, 0), nil, nil)

	app := fiber.New()
	app.Post("/api/v1/chat", h.HandleChat)
	app.Get("/api/v1/chat/history", h.GetChatHistory)
	return app
}

func postChat(t *testing.T, app *fiber.App, payload any) (int, []byte) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, raw
}

func TestHandleChat_AnswersCalorieQuestion(t *testing.T) {
	app := testApp(t)

	status, raw := postChat(t, app, fiber.Map{"message": "Can you calculate my calories?"})
	require.Equal(t, fiber.StatusOK, status)

	var resp coach.Response
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, coach.IntentTDEE, resp.Intent)
	assert.Contains(t, resp.Response, "biological sex")
	assert.Equal(t, []string{"sex"}, resp.AskedThisIntent)
}

func TestHandleChat_AppendsMessageToHistory(t *testing.T) {
	app := testApp(t)

	status, raw := postChat(t, app, fiber.Map{
		"message": "what is my weight?",
		"history": []coach.Turn{
			{Role: coach.RoleUser, Content: "I weigh 80 kg"},
			{Role: coach.RoleAssistant, Content: "Noted."},
		},
	})
	require.Equal(t, fiber.StatusOK, status)

	var resp coach.Response
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, coach.IntentRecall, resp.Intent)
	assert.Contains(t, resp.Response, "80 kg")
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	app := testApp(t)

	status, raw := postChat(t, app, fiber.Map{"message": "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(raw), "Message is required")
}

func TestHandleChat_MalformedBody(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestGetChatHistory_NoStore(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/chat/history", nil)
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, fiber.StatusOK, res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var body struct {
		History []any `json:"history"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Empty(t, body.History)
}
