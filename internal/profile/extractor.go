package profile

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	sexRe    = regexp.MustCompile(`(?i)\b(male|female|man|woman|boy|girl|m|f)\b`)
	ageRe    = regexp.MustCompile(`(?i)\b(1[0-9]|[2-8][0-9])\s*(?:yo|y/o|years?|yrs?)?\b`)
	weightRe      = regexp.MustCompile(`(?i)\b(\d{2,3})\s*(kg|kilograms|lbs|lb|pounds?)\b`)
	weightLooseRe = regexp.MustCompile(`(?i)\b(?:i\s+weigh|my\s+weight\s+is)\s+(\d{2,3})\b`)

	// Height variants: "5 ft 11 in", "5'11"", "5ft11", loose "5 11", then
	// metric and inches-only forms.
	heightFeetInRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:ft|foot|feet|['′])\s*(\d{1,2})\s*(?:in|inch|inches|["″])?\b`)
	heightLooseRe   = regexp.MustCompile(`\b(\d)\s+(\d{1,2})\b`)
	heightCmRe      = regexp.MustCompile(`(?i)\b(\d{2,3})\s*cm\b`)
	heightMetersRe  = regexp.MustCompile(`(?i)\b(1\.[3-9]\d?|2\.[0-2]\d?)\s*m\b`)
	heightInOnlyRe  = regexp.MustCompile(`(?i)\b(5\d|6\d|7[0-2])\s*(?:in|inch|inches)\b`)
	trainingFreqRe  = regexp.MustCompile(`(3|4|5)\s*(x|times)?\s*(a|per)?\s*week`)
)

const lbToKg = 0.4536

var activeJobWords = []string{
	"produce", "warehouse", "stock", "stocking", "retail", "server", "barista",
	"nurse", "construction", "lifting boxes", "on my feet", "on feet", "walk", "walking",
}

var resistanceTrainingWords = []string{
	"lift", "lifting", "weights", "weight training", "gym", "resistance",
}

// ParseFacts extracts any profile facts present in a single user message.
// Fields with no match stay nil. It never fails on odd input.
func ParseFacts(message string) Profile {
	lower := strings.ToLower(message)
	var p Profile

	if m := sexRe.FindStringSubmatch(lower); m != nil {
		switch m[1] {
		case "male", "man", "boy", "m":
			p.Sex = strPtr("male")
		default:
			p.Sex = strPtr("female")
		}
	}

	if m := ageRe.FindStringSubmatch(lower); m != nil {
		if age, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.Age = floatPtr(age)
		}
	}

	if m := weightRe.FindStringSubmatch(lower); m != nil {
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			if strings.Contains(m[2], "kg") {
				p.WeightKg = floatPtr(val)
			} else {
				p.WeightKg = floatPtr(val * lbToKg)
			}
		}
	} else if m := weightLooseRe.FindStringSubmatch(lower); m != nil {
		// "I weigh 80" with no unit reads as kilograms.
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.WeightKg = floatPtr(val)
		}
	}

	if cm, ok := extractHeightCm(lower); ok {
		p.HeightCm = floatPtr(cm)
	}

	for _, name := range ActivityNames {
		if strings.Contains(lower, name) {
			p.ActivityFactor = floatPtr(ActivityFactor(name))
			break
		}
	}
	if p.ActivityFactor == nil {
		if f, ok := inferActivityFactor(lower); ok {
			p.ActivityFactor = floatPtr(f)
		}
	}

	return p
}

// Rebuild folds ParseFacts over the user messages in transcript order.
// Later mentions of a fact overwrite earlier ones.
func Rebuild(userMessages []string) Profile {
	var p Profile
	for _, msg := range userMessages {
		p.Merge(ParseFacts(msg))
	}
	return p
}

// inferActivityFactor guesses from lifestyle clues when no activity keyword
// is present: an active job plus training reads as moderate, a physically
// heavy job alone as moderate or light, training alone as light or sedentary.
func inferActivityFactor(lower string) (float64, bool) {
	var jobHits, trainHits int
	for _, w := range activeJobWords {
		if strings.Contains(lower, w) {
			jobHits++
		}
	}
	for _, w := range resistanceTrainingWords {
		if strings.Contains(lower, w) {
			trainHits++
		}
	}

	switch {
	case jobHits > 0 && trainHits > 0:
		return ActivityFactor("moderate"), true
	case jobHits > 0:
		if strings.Contains(lower, "construction") || strings.Contains(lower, "warehouse") {
			return ActivityFactor("moderate"), true
		}
		return ActivityFactor("light"), true
	case trainHits > 0:
		if trainingFreqRe.MatchString(lower) {
			return ActivityFactor("light"), true
		}
		return ActivityFactor("sedentary"), true
	}
	return 0, false
}

// extractHeightCm tries imperial forms first, then cm, meters, and bare
// inches. Metric results outside 90-250 cm are rejected as implausible.
func extractHeightCm(lower string) (float64, bool) {
	if m := heightFeetInRe.FindStringSubmatch(lower); m != nil {
		feet, err1 := strconv.ParseFloat(m[1], 64)
		inch, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && feet >= 3 && feet <= 8 && inch >= 0 && inch < 12 {
			return (feet*12 + inch) * 2.54, true
		}
	}
	// Loose "5 11" only counts when both numbers are plausible as feet and
	// inches, so ages and weights never masquerade as heights.
	if m := heightLooseRe.FindStringSubmatch(lower); m != nil {
		feet, err1 := strconv.ParseFloat(m[1], 64)
		inch, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && feet >= 3 && feet <= 8 && inch >= 0 && inch < 12 {
			return (feet*12 + inch) * 2.54, true
		}
	}
	if m := heightCmRe.FindStringSubmatch(lower); m != nil {
		if cm, err := strconv.ParseFloat(m[1], 64); err == nil && cm >= 90 && cm <= 250 {
			return cm, true
		}
	}
	if m := heightMetersRe.FindStringSubmatch(lower); m != nil {
		if meters, err := strconv.ParseFloat(m[1], 64); err == nil {
			cm := meters * 100
			if cm >= 90 && cm <= 250 {
				return cm, true
			}
		}
	}
	if m := heightInOnlyRe.FindStringSubmatch(lower); m != nil {
		if inches, err := strconv.ParseFloat(m[1], 64); err == nil {
			cm := inches * 2.54
			if cm >= 90 && cm <= 250 {
				return cm, true
			}
		}
	}
	return 0, false
}
