package retrieval

import "strings"

// synonymTable expands common gym shorthand so a query phrased one way still
// reaches passages written the other way. Keys are matched as substrings of
// the lowercased query.
var synonymTable = []struct {
	trigger    string
	expansions []string
}{
	{"tdee", []string{"maintenance calories", "daily burn", "energy expenditure"}},
	{"bmr", []string{"resting calories", "basal metabolic rate"}},
	{"cut", []string{"calorie deficit", "weight loss", "fat loss"}},
	{"bulk", []string{"calorie surplus", "muscle gain", "weight gain"}},
	{"cardio", []string{"aerobic", "walking", "running"}},
	{"protein", []string{"macros", "nutrition"}},
	{"sore", []string{"recovery", "rest day"}},
	{"beginner", []string{"starting out", "new to training"}},
}

// expandQuery appends synonym phrases for any trigger present in the query.
// The original query text always comes first.
func expandQuery(query string) string {
	lower := strings.ToLower(query)
	parts := []string{query}
	for _, entry := range synonymTable {
		if strings.Contains(lower, entry.trigger) {
			parts = append(parts, entry.expansions...)
		}
	}
	return strings.Join(parts, " ")
}
