package profile

// FieldOrder fixes the canonical order in which missing facts are reported
// and asked for.
var FieldOrder = []string{"sex", "age", "weight_kg", "height_cm", "activity_factor"}

// FieldHuman maps internal field names to the phrasing used when asking the
// user for them.
var FieldHuman = map[string]string{
	"sex":             "biological sex (male or female)",
	"age":             "age",
	"weight_kg":       "weight",
	"height_cm":       "height",
	"activity_factor": "activity level (sedentary, light, moderate, very, extra)",
}

// Profile holds the facts extracted from user messages. Nil means unknown.
// It is rebuilt from the transcript on every turn, so later mentions of a
// fact overwrite earlier ones.
type Profile struct {
	Sex            *string  `json:"sex"`
	Age            *float64 `json:"age"`
	WeightKg       *float64 `json:"weight_kg"`
	HeightCm       *float64 `json:"height_cm"`
	ActivityFactor *float64 `json:"activity_factor"`
}

// Merge overlays the known fields of other onto p. Fields other leaves nil
// are untouched.
func (p *Profile) Merge(other Profile) {
	if other.Sex != nil {
		p.Sex = other.Sex
	}
	if other.Age != nil {
		p.Age = other.Age
	}
	if other.WeightKg != nil {
		p.WeightKg = other.WeightKg
	}
	if other.HeightCm != nil {
		p.HeightCm = other.HeightCm
	}
	if other.ActivityFactor != nil {
		p.ActivityFactor = other.ActivityFactor
	}
}

// Missing lists the unknown fields in canonical order.
func (p *Profile) Missing() []string {
	var out []string
	for _, f := range FieldOrder {
		if !p.has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Complete reports whether every fact needed for an energy estimate is known.
func (p *Profile) Complete() bool {
	return len(p.Missing()) == 0
}

func (p *Profile) has(field string) bool {
	switch field {
	case "sex":
		return p.Sex != nil
	case "age":
		return p.Age != nil
	case "weight_kg":
		return p.WeightKg != nil
	case "height_cm":
		return p.HeightCm != nil
	case "activity_factor":
		return p.ActivityFactor != nil
	}
	return false
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
