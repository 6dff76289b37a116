package audio

import "github.com/Gida-concept/ai-radio-show-bot/internal/models"

// VoiceTable maps a character's voice key to a provider voice ID. Unknown
// keys fall back to a per-gender default so a miscast character still speaks.
type VoiceTable struct {
	Voices   map[string]string
	Fallback map[models.Gender]string
}

// DefaultVoiceTable covers the two host voices and the two guest slots.
// The IDs are ElevenLabs premade voices chosen to match each slot's register.
func DefaultVoiceTable() *VoiceTable {
	return &VoiceTable{
		Voices: map[string]string{
			"vits_male_01":   "pNInz6obpgDQGcFmaJgB", // deep male, host
			"vits_female_01": "EXAVITQu4vr4xnSDxMaL", // clear female, host
			"vits_male_02":   "TxGEqnHWrfWFTfGW9XjX", // distinct male, guest
			"vits_female_02": "ThT5KcBeYPX3keUQqHPh", // distinct female, guest
		},
		Fallback: map[models.Gender]string{
			models.GenderMale:   "pNInz6obpgDQGcFmaJgB",
			models.GenderFemale: "EXAVITQu4vr4xnSDxMaL",
		},
	}
}

// Resolve returns the provider voice ID for a character, along with whether
// the character's own voice key was found or a gender fallback was used.
func (t *VoiceTable) Resolve(c models.Character) (string, bool) {
	if id, ok := t.Voices[c.Voice]; ok {
		return id, true
	}
	return t.Fallback[c.Gender], false
}
