package profile

import (
	"fmt"
	"math"
)

// ActivityNames in ascending multiplier order. Iterated as a slice so word
// matching is deterministic.
var ActivityNames = []string{"sedentary", "light", "moderate", "very", "extra"}

var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"very":      1.725,
	"extra":     1.9,
}

// ActivityFactor returns the multiplier for a named activity level, or 0 for
// an unknown name.
func ActivityFactor(name string) float64 {
	return activityFactors[name]
}

// ActivityName returns the level name whose multiplier matches factor, or ""
// when none does.
func ActivityName(factor float64) string {
	for _, name := range ActivityNames {
		if activityFactors[name] == factor {
			return name
		}
	}
	return ""
}

// TDEEResult is the computed daily-energy estimate: resting burn plus a
// ±5% band around the activity-adjusted total.
type TDEEResult struct {
	BMR   int    `json:"bmr"`
	TDEE  int    `json:"tdee"`
	Range [2]int `json:"range"`
}

// ComputeTDEE applies the Mifflin-St Jeor equation. All five profile fields
// must be known.
func ComputeTDEE(p Profile) (TDEEResult, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return TDEEResult{}, fmt.Errorf("missing fields for tdee: %v", missing)
	}

	bmr := 10*(*p.WeightKg) + 6.25*(*p.HeightCm) - 5*(*p.Age)
	if *p.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	tdee := bmr * *p.ActivityFactor

	return TDEEResult{
		BMR:   int(math.Round(bmr)),
		TDEE:  int(math.Round(tdee)),
		Range: [2]int{int(math.Round(tdee * 0.95)), int(math.Round(tdee * 1.05))},
	}, nil
}

// FormatTDEE renders the estimate in plain language, appending a gentle
// nudge toward professional advice when the implied BMI is extreme.
func FormatTDEE(result TDEEResult, p Profile) string {
	bmiNote := ""
	if p.WeightKg != nil && p.HeightCm != nil && *p.HeightCm > 0 {
		heightM := *p.HeightCm / 100.0
		bmi := *p.WeightKg / (heightM * heightM)
		if bmi < 16 || bmi > 40 {
			bmiNote = " If you can, talk to a health professional."
		}
	}
	return fmt.Sprintf(
		"Your body at rest uses about %d calories (BMR). Daily burn about %d-%d calories (TDEE). This is only a rough guess, not medical advice.%s",
		result.BMR, result.Range[0], result.Range[1], bmiNote,
	)
}
