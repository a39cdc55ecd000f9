package coach

import (
	"strings"

	"github.com/JoeyRudd/ai-fitness-coach/internal/retrieval"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/utils"
)

const appPersona = "You are a friendly, encouraging, safety-first fitness coach for true beginners (often mid-40s). " +
	"Sound natural and human. Warm, calm, optimistic. Use contractions and plain words. " +
	"Keep messages brief (1-3 short paragraphs). No bullet lists unless the user asks. " +
	"Avoid medical claims or diagnoses."

const antiHallucinationRules = "If something isn't in the context or user message, say what you don't know briefly, " +
	"ask one short clarifying question, or offer a safe, general guideline with a clear caveat. " +
	"Never invent numbers or facts. Be supportive without sounding robotic."

const maxContextChunkChars = 500

// contextLines renders retrieved passages as "[source] text" lines, each
// capped for prompt-budget control.
func contextLines(results []retrieval.Result) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		text := strings.TrimSpace(r.Text)
		if len(text) > maxContextChunkChars {
			text = utils.Truncate(text, maxContextChunkChars) + "..."
		}
		lines = append(lines, "["+r.Source+"] "+text)
	}
	return lines
}

func buildGeneralPrompt(userMessage string, context []string, safetyAsked bool) string {
	var b strings.Builder
	b.WriteString("Persona: ")
	b.WriteString(appPersona)
	b.WriteString("\n")

	if len(context) > 0 {
		b.WriteString("\nContext:\n")
		b.WriteString(strings.Join(context, "\n"))
		b.WriteString("\nOnly use this info if helpful. If unsure, be transparent and ask a brief follow-up.\n")
	}

	b.WriteString("Instructions: ")
	b.WriteString(antiHallucinationRules)
	b.WriteString(" Use contractions. Be warm and conversational. Avoid filler like 'That's a great question' or 'As an AI'. ")
	b.WriteString("Avoid cliche safety lines like 'listen to your body' or 'if you feel pain, stop' unless the user asks about safety, pain, injury, form, or medical care.\n")
	b.WriteString("SafetyAsked: ")
	if safetyAsked {
		b.WriteString("yes")
	} else {
		b.WriteString("no")
	}
	b.WriteString("\nUser: ")
	b.WriteString(userMessage)
	b.WriteString("\nAssistant:")
	return b.String()
}
