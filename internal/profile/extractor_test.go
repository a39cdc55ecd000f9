package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFacts_SexAndAge(t *testing.T) {
	p := ParseFacts("I am a 30 yo female")

	require.NotNil(t, p.Sex)
	assert.Equal(t, "female", *p.Sex)
	require.NotNil(t, p.Age)
	assert.Equal(t, 30.0, *p.Age)
}

func TestParseFacts_SexVariants(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"male here", "male"},
		{"just a regular man", "male"},
		{"a boy who wants to lift", "male"},
		{"female, 40", "female"},
		{"a woman in her forties", "female"},
		{"girl starting out", "female"},
	}
	for _, tt := range tests {
		p := ParseFacts(tt.message)
		require.NotNil(t, p.Sex, "message: %s", tt.message)
		assert.Equal(t, tt.want, *p.Sex, "message: %s", tt.message)
	}
}

func TestParseFacts_WeightUnits(t *testing.T) {
	p := ParseFacts("I weigh 80 kg these days")
	require.NotNil(t, p.WeightKg)
	assert.InDelta(t, 80.0, *p.WeightKg, 0.01)

	p = ParseFacts("about 176 lbs")
	require.NotNil(t, p.WeightKg)
	assert.InDelta(t, 176*0.4536, *p.WeightKg, 0.01)

	p = ParseFacts("my weight is 75")
	require.NotNil(t, p.WeightKg)
	assert.InDelta(t, 75.0, *p.WeightKg, 0.01)
}

func TestParseFacts_HeightForms(t *testing.T) {
	tests := []struct {
		message string
		wantCm  float64
	}{
		{`I am 5'11" tall`, (5*12 + 11) * 2.54},
		{"5 ft 11 in", (5*12 + 11) * 2.54},
		{"5ft11", (5*12 + 11) * 2.54},
		{"180 cm", 180},
		{"about 1.8 m", 180},
		{"72 inches", 72 * 2.54},
	}
	for _, tt := range tests {
		p := ParseFacts(tt.message)
		require.NotNil(t, p.HeightCm, "message: %s", tt.message)
		assert.InDelta(t, tt.wantCm, *p.HeightCm, 0.01, "message: %s", tt.message)
	}
}

func TestParseFacts_HeightImplausibleRejected(t *testing.T) {
	p := ParseFacts("the box is 300 cm wide")
	assert.Nil(t, p.HeightCm)
}

func TestParseFacts_HeightMetersBand(t *testing.T) {
	// Only 1.3-2.29 m reads as a height; values outside the band are not
	// plausible adult statures even when the unit is present.
	p := ParseFacts("i am 1.1 m")
	assert.Nil(t, p.HeightCm)

	p = ParseFacts("i am 2.5 m")
	assert.Nil(t, p.HeightCm)

	p = ParseFacts("i am 2.1 m")
	require.NotNil(t, p.HeightCm)
	assert.InDelta(t, 210.0, *p.HeightCm, 0.01)
}

func TestParseFacts_ActivityKeyword(t *testing.T) {
	p := ParseFacts("I'd say my lifestyle is sedentary")
	require.NotNil(t, p.ActivityFactor)
	assert.Equal(t, 1.2, *p.ActivityFactor)

	p = ParseFacts("moderate activity most days")
	require.NotNil(t, p.ActivityFactor)
	assert.Equal(t, 1.55, *p.ActivityFactor)
}

func TestParseFacts_ActivityHeuristics(t *testing.T) {
	// Active job plus resistance training reads as moderate.
	p := ParseFacts("work in a warehouse and lift weights after")
	require.NotNil(t, p.ActivityFactor)
	assert.Equal(t, ActivityFactor("moderate"), *p.ActivityFactor)

	// Heavy job alone.
	p = ParseFacts("construction job keeps me busy")
	require.NotNil(t, p.ActivityFactor)
	assert.Equal(t, ActivityFactor("moderate"), *p.ActivityFactor)

	// Retail job alone reads as light.
	p = ParseFacts("retail job, nothing else")
	require.NotNil(t, p.ActivityFactor)
	assert.Equal(t, ActivityFactor("light"), *p.ActivityFactor)

	// Training with a weekly frequency reads as light.
	p = ParseFacts("I hit the gym 3 times a week")
	require.NotNil(t, p.ActivityFactor)
	assert.Equal(t, ActivityFactor("light"), *p.ActivityFactor)

	// Training with no frequency reads as sedentary.
	p = ParseFacts("thinking about lifting")
	require.NotNil(t, p.ActivityFactor)
	assert.Equal(t, ActivityFactor("sedentary"), *p.ActivityFactor)

	p = ParseFacts("nothing noteworthy")
	assert.Nil(t, p.ActivityFactor)
}

func TestParseFacts_NoFacts(t *testing.T) {
	p := ParseFacts("hello there, how are you?")
	assert.Nil(t, p.Sex)
	assert.Nil(t, p.Age)
	assert.Nil(t, p.WeightKg)
	assert.Nil(t, p.HeightCm)
	assert.Nil(t, p.ActivityFactor)
}

func TestRebuild_LastMentionWins(t *testing.T) {
	p := Rebuild([]string{"I weigh 80 kg", "actually I weigh 85 kg now"})

	require.NotNil(t, p.WeightKg)
	assert.InDelta(t, 85.0, *p.WeightKg, 0.01)
}

func TestRebuild_Idempotent(t *testing.T) {
	msgs := []string{"30 yo female", "70 kg and 170 cm", "moderate activity"}

	first := Rebuild(msgs)
	second := Rebuild(msgs)

	assert.Equal(t, first, second)
}

func TestRebuild_UnmatchedTurnLeavesFields(t *testing.T) {
	p := Rebuild([]string{"I am 25 years old", "what should I eat?"})

	require.NotNil(t, p.Age)
	assert.Equal(t, 25.0, *p.Age)
}

func TestMissing_CanonicalOrder(t *testing.T) {
	p := Rebuild([]string{"30 yo female"})

	assert.Equal(t, []string{"weight_kg", "height_cm", "activity_factor"}, p.Missing())
	assert.False(t, p.Complete())
}
