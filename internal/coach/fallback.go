package coach

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/JoeyRudd/ai-fitness-coach/internal/profile"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/utils"
)

var (
	frequencyTopicRe = regexp.MustCompile(`(?i)frequency|how often|days|week`)
	nutritionTopicRe = regexp.MustCompile(`(?i)nutrition|eat|diet|protein`)
	safetyTopicRe    = regexp.MustCompile(`(?i)form|injury|hurt|pain`)
)

// renderRecall answers "what is my X" from the stored profile, converting
// units for display.
func renderRecall(field string, p profile.Profile) string {
	switch field {
	case "height_cm":
		if p.HeightCm == nil {
			return "I do not have that yet."
		}
		cm := int(math.Round(*p.HeightCm))
		totalInches := *p.HeightCm / 2.54
		feet := int(totalInches / 12)
		inches := int(math.Round(math.Mod(totalInches, 12)))
		if inches == 12 {
			feet++
			inches = 0
		}
		return fmt.Sprintf("You told me your height is about %d cm (~%d' %d\").", cm, feet, inches)
	case "weight_kg":
		if p.WeightKg == nil {
			return "I do not have that yet."
		}
		kg := math.Round(*p.WeightKg*10) / 10
		lbs := int(math.Round(kg / 0.4536))
		return fmt.Sprintf("Your weight saved is about %g kg (~%d lb).", kg, lbs)
	case "age":
		if p.Age == nil {
			return "I do not have that yet."
		}
		return fmt.Sprintf("You said you are %d years old.", int(*p.Age))
	case "sex":
		if p.Sex == nil {
			return "I do not have that yet."
		}
		return fmt.Sprintf("You told me your biological sex is %s.", *p.Sex)
	case "activity_factor":
		if p.ActivityFactor == nil {
			return "I do not have that yet."
		}
		if name := profile.ActivityName(*p.ActivityFactor); name != "" {
			return fmt.Sprintf("Saved activity level is %s (factor %g).", name, *p.ActivityFactor)
		}
		return fmt.Sprintf("Saved activity factor is %g", *p.ActivityFactor)
	}
	return "I do not have that yet."
}

// fallbackGeneral is the deterministic reply used when no language model is
// reachable: lead with the first retrieved sentence, else a canned tip
// matched to the question's topic.
func fallbackGeneral(userMessage string, context []string) string {
	base := "I am in simple mode."
	sentence := ""
	if len(context) > 0 {
		first := strings.ReplaceAll(strings.TrimSpace(context[0]), "\n", " ")
		if parts := splitWithPunct(first); len(parts) > 0 {
			snippet := strings.TrimRight(parts[0], ".!?")
			if len(snippet) > 160 {
				snippet = utils.Truncate(snippet, 160)
			}
			snippet = strings.TrimSpace(snippet)
			if snippet != "" {
				sentence = " Here's a quick note from my files: " + snippet + "."
			}
		}
	}
	if sentence == "" {
		switch {
		case frequencyTopicRe.MatchString(userMessage):
			sentence = " Try two full-body days to start, plus a short daily walk."
		case nutritionTopicRe.MatchString(userMessage):
			sentence = " Aim for simple, balanced meals: protein, veggies, and carbs you enjoy."
		case safetyTopicRe.MatchString(userMessage):
			sentence = " Ease in and stop if you feel sharp pain. Good form over speed."
		default:
			sentence = " Start small, then add a little each week."
		}
	}
	return base + sentence + " Tell me a bit more and I'll tailor it."
}
