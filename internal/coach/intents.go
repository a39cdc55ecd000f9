package coach

import (
	"regexp"
	"strings"

	"github.com/JoeyRudd/ai-fitness-coach/internal/profile"
)

const (
	IntentNone    = "none"
	IntentRecall  = "recall"
	IntentTDEE    = "tdee"
	IntentGeneral = "general"
)

var tdeeKeywords = []string{
	"tdee", "maintenance", "calorie", "calories", "bmr", "burn each day", "daily burn",
}

var startTDEERe = regexp.MustCompile(`(?i)(what\s+should\s+i\s+start|where\s+do\s+i\s+start|how\s+do\s+i\s+start)`)

var safetyTriggerRe = regexp.MustCompile(`(?i)(safe|safety|injur(?:y|ies)|hurt|pain|form|medical|doctor|physician|therap|rehab)`)

// tdeeAnsweredRe recognizes an assistant turn that already delivered a
// BMR/TDEE-shaped answer.
var tdeeAnsweredRe = regexp.MustCompile(`(?i)(BMR).*(Daily burn)|Daily burn about`)

var recallPatterns = []struct {
	field string
	re    *regexp.Regexp
}{
	{"height_cm", regexp.MustCompile(`(?i)(my\s+height|how\s+tall\s+am\s+i)`)},
	{"weight_kg", regexp.MustCompile(`(?i)(my\s+weight|how\s+much\s+do\s+i\s+weigh)`)},
	{"age", regexp.MustCompile(`(?i)(my\s+age|how\s+old\s+am\s+i)`)},
	{"sex", regexp.MustCompile(`(?i)(my\s+(sex|biological\s+sex|gender))`)},
	{"activity_factor", regexp.MustCompile(`(?i)(my\s+activity|activity\s+level)`)},
}

var askPatterns = map[string]*regexp.Regexp{
	"sex":             regexp.MustCompile(`(?i)sex`),
	"age":             regexp.MustCompile(`(?i)age`),
	"weight_kg":       regexp.MustCompile(`(?i)weight`),
	"height_cm":       regexp.MustCompile(`(?i)height`),
	"activity_factor": regexp.MustCompile(`(?i)activity`),
}

func isTDEEIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range tdeeKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return startTDEERe.MatchString(lower)
}

func isSafetyTopic(message string) bool {
	return safetyTriggerRe.MatchString(message)
}

// detectRecall returns the profile field the user is asking back for, or "".
// Patterns are checked in a fixed order so overlapping phrasings resolve
// deterministically.
func detectRecall(message string) string {
	for _, p := range recallPatterns {
		if p.re.MatchString(message) {
			return p.field
		}
	}
	return ""
}

// alreadyAsked reports whether a recent assistant turn already asked for the
// field. Only the last 30 assistant turns are scanned.
func alreadyAsked(field string, history []Turn) bool {
	pat, ok := askPatterns[field]
	if !ok {
		return false
	}
	scanned := 0
	for i := len(history) - 1; i >= 0; i-- {
		if scanned > 30 {
			break
		}
		if history[i].Role != RoleAssistant {
			continue
		}
		scanned++
		if pat.MatchString(history[i].Content) && strings.Contains(history[i].Content, "?") {
			return true
		}
	}
	return false
}

// unresolvedTDEE reports whether a past user turn asked for a calorie
// estimate that no later assistant turn has answered. Keeps the estimate
// request sticky while the engine is still collecting facts.
func unresolvedTDEE(history []Turn) bool {
	saw := false
	for _, turn := range history {
		if turn.Role == RoleUser && isTDEEIntent(turn.Content) {
			saw = true
		}
		if saw && turn.Role == RoleAssistant && tdeeAnsweredRe.MatchString(turn.Content) {
			return false
		}
	}
	return saw
}

// askQuestion phrases the single clarifying question for a missing field.
func askQuestion(field string) string {
	if field == "activity_factor" {
		return "What is your activity level? (sedentary, light, moderate, very, extra)"
	}
	return "Can you tell me your " + profile.FieldHuman[field] + "?"
}
