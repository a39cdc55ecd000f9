package coach

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeyRudd/ai-fitness-coach/internal/retrieval"
)

func TestContextLines_CapsWithoutSplittingRunes(t *testing.T) {
	long := strings.Repeat("wörk the müscle hård — then rest. ", 30)
	lines := contextLines([]retrieval.Result{{Text: long, Source: "recovery.md"}})

	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "[recovery.md] "))
	assert.True(t, strings.HasSuffix(lines[0], "..."))
	assert.True(t, utf8.ValidString(lines[0]))
	assert.LessOrEqual(t, len(lines[0]), len("[recovery.md] ")+maxContextChunkChars+len("..."))
}

func TestBuildGeneralPrompt_SafetyFlag(t *testing.T) {
	prompt := buildGeneralPrompt("is squatting safe?", []string{"[form.md] Keep your heels down."}, true)

	assert.Contains(t, prompt, "SafetyAsked: yes")
	assert.Contains(t, prompt, "[form.md] Keep your heels down.")
	assert.Contains(t, prompt, "User: is squatting safe?")

	prompt = buildGeneralPrompt("how often?", nil, false)
	assert.Contains(t, prompt, "SafetyAsked: no")
	assert.NotContains(t, prompt, "Context:")
}

func TestFallbackGeneral_SnippetStaysValidUTF8(t *testing.T) {
	long := "[kb.md] " + strings.Repeat("stärk düring löng wörkouts ", 20) + "and then some."
	reply := fallbackGeneral("any tips?", []string{long})

	assert.True(t, utf8.ValidString(reply))
	assert.Contains(t, reply, "I am in simple mode.")
}
