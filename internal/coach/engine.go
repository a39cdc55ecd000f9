package coach

import (
	"context"

	"go.uber.org/zap"

	"github.com/JoeyRudd/ai-fitness-coach/internal/metrics"
	"github.com/JoeyRudd/ai-fitness-coach/internal/profile"
	"github.com/JoeyRudd/ai-fitness-coach/internal/retrieval"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one message of the caller-supplied transcript. The transcript is
// the sole source of truth: nothing about the user persists server-side.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the engine's answer plus the state it derived along the way,
// echoed back so the caller can carry it forward.
type Response struct {
	Response        string              `json:"response"`
	Profile         profile.Profile     `json:"profile"`
	TDEE            *profile.TDEEResult `json:"tdee"`
	Missing         []string            `json:"missing"`
	AskedThisIntent []string            `json:"asked_this_intent"`
	Intent          string              `json:"intent"`
}

// Completer produces a model reply for a fully-built prompt. A nil Completer
// puts the engine in deterministic fallback mode.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const llmFailureReply = "Sorry. Trouble answering now. Try again soon."

type Engine struct {
	index     *retrieval.Index
	completer Completer
	topK      int
}

func NewEngine(index *retrieval.Index, completer Completer, topK int) *Engine {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	return &Engine{index: index, completer: completer, topK: topK}
}

// Respond derives intent and profile from the transcript and produces the
// next assistant message. It never returns an error: every failure path
// degrades to a deterministic reply.
func (e *Engine) Respond(ctx context.Context, history []Turn) Response {
	var userMessages []string
	for _, t := range history {
		if t.Role == RoleUser {
			userMessages = append(userMessages, t.Content)
		}
	}
	if len(userMessages) == 0 {
		return Response{
			Response:        "Please send a message.",
			Missing:         append([]string(nil), profile.FieldOrder...),
			AskedThisIntent: []string{},
			Intent:          IntentNone,
		}
	}

	lastUser := userMessages[len(userMessages)-1]
	prof := profile.Rebuild(userMessages)
	missing := missingOrEmpty(prof)

	if field := detectRecall(lastUser); field != "" {
		return Response{
			Response:        renderRecall(field, prof),
			Profile:         prof,
			Missing:         missing,
			AskedThisIntent: []string{},
			Intent:          IntentRecall,
		}
	}

	if isTDEEIntent(lastUser) || unresolvedTDEE(history) {
		return e.respondTDEE(prof, missing, history)
	}

	return e.respondGeneral(ctx, lastUser, prof, missing)
}

func (e *Engine) respondTDEE(prof profile.Profile, missing []string, history []Turn) Response {
	if prof.Complete() {
		result, err := profile.ComputeTDEE(prof)
		if err != nil {
			logger.Warn("TDEE computation failed on complete profile", zap.Error(err))
			return Response{
				Response:        llmFailureReply,
				Profile:         prof,
				Missing:         missing,
				AskedThisIntent: []string{},
				Intent:          IntentTDEE,
			}
		}
		return Response{
			Response:        profile.FormatTDEE(result, prof),
			Profile:         prof,
			TDEE:            &result,
			Missing:         []string{},
			AskedThisIntent: []string{},
			Intent:          IntentTDEE,
		}
	}

	for _, field := range missing {
		if alreadyAsked(field, history) {
			continue
		}
		return Response{
			Response:        askQuestion(field),
			Profile:         prof,
			Missing:         missing,
			AskedThisIntent: []string{field},
			Intent:          IntentTDEE,
		}
	}

	// Every missing field was already asked for; give starter guidance
	// instead of repeating a question.
	return Response{
		Response:        "I can still guide you. Start with 2 easy full body days and a short daily walk. Share missing info later for numbers.",
		Profile:         prof,
		Missing:         missing,
		AskedThisIntent: []string{},
		Intent:          IntentTDEE,
	}
}

func (e *Engine) respondGeneral(ctx context.Context, lastUser string, prof profile.Profile, missing []string) Response {
	var ctxLines []string
	if e.index != nil {
		ctxLines = contextLines(e.index.Retrieve(lastUser, e.topK))
	}
	metrics.RetrievalChunks.Observe(float64(len(ctxLines)))

	resp := Response{
		Profile:         prof,
		Missing:         missing,
		AskedThisIntent: []string{},
		Intent:          IntentGeneral,
	}

	if e.completer == nil {
		resp.Response = fallbackGeneral(lastUser, ctxLines)
		return resp
	}

	prompt := buildGeneralPrompt(lastUser, ctxLines, isSafetyTopic(lastUser))
	reply, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("Completion failed, using deterministic fallback", zap.Error(err))
		resp.Response = fallbackGeneral(lastUser, ctxLines)
		return resp
	}
	resp.Response = sanitizeCliches(lastUser, reply)
	return resp
}

func missingOrEmpty(p profile.Profile) []string {
	if m := p.Missing(); m != nil {
		return m
	}
	return []string{}
}
