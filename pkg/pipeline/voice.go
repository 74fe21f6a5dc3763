package pipeline

import "strings"

// VoiceMap maps a resolved gender to a speech-synthesis voice reference.
// References are provider specific; for XTTS they are speaker WAV URLs.
type VoiceMap struct {
	Male   string
	Female string

	// DefaultGender is used when the composed gender is missing or not one
	// of the two known values.
	DefaultGender Gender
}

// DefaultVoices returns the stock voice references used by the app.
func DefaultVoices() VoiceMap {
	return VoiceMap{
		Male:          "https://replicate.delivery/pbxt/Jt79w0xsT64R1JsiJ0LQRL8UcWspg5J4RFrU6YwEKpOT1ukS/male.wav",
		Female:        "https://audioaiforyou.s3.us-east-2.amazonaws.com/voicemodel/female.wav",
		DefaultGender: GenderMale,
	}
}

// Resolve lower-cases the raw composed gender and maps it onto a voice.
// Anything outside {male, female} resolves to the default, never an error.
func (v VoiceMap) Resolve(raw string) (Gender, string) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male":
		return GenderMale, v.Male
	case "female":
		return GenderFemale, v.Female
	}
	return v.DefaultGender, v.reference(v.DefaultGender)
}

func (v VoiceMap) reference(g Gender) string {
	if g == GenderFemale {
		return v.Female
	}
	return v.Male
}
