package domain

// Tone selects the voice of an interpretation.
type Tone string

const (
	ToneWarm       Tone = "warm"
	ToneDirect     Tone = "direct"
	ToneMystical   Tone = "mystical"
	ToneAnalytical Tone = "analytical"
)

var toneDescriptors = map[Tone]string{
	ToneWarm:       "Warm & Empowering",
	ToneDirect:     "Direct & Practical",
	ToneMystical:   "Mystical & Poetic",
	ToneAnalytical: "Analytical & Psychological",
}

// ParseTone maps a raw tone name to a Tone. An empty name selects ToneWarm.
func ParseTone(raw string) (Tone, error) {
	if raw == "" {
		return ToneWarm, nil
	}

	t := Tone(raw)
	if _, ok := toneDescriptors[t]; !ok {
		return "", NewValidationErrorWithValue("tone", "must be one of warm, direct, mystical, analytical", raw)
	}

	return t, nil
}

// Descriptor returns the human-readable label used in prompts.
func (t Tone) Descriptor() string {
	if d, ok := toneDescriptors[t]; ok {
		return d
	}

	return toneDescriptors[ToneWarm]
}
