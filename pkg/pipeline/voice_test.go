package pipeline

import (
	"testing"

	"github.com/matryer/is"
)

func TestVoiceMapResolve(t *testing.T) {
	voices := VoiceMap{
		Male:          "male.wav",
		Female:        "female.wav",
		DefaultGender: GenderMale,
	}

	tests := []struct {
		name      string
		raw       string
		wantG     Gender
		wantVoice string
	}{
		{"male", "male", GenderMale, "male.wav"},
		{"female", "female", GenderFemale, "female.wav"},
		{"mixed case", "Female", GenderFemale, "female.wav"},
		{"whitespace", "  male \n", GenderMale, "male.wav"},
		{"empty falls back", "", GenderMale, "male.wav"},
		{"unknown falls back", "robot", GenderMale, "male.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			g, voice := voices.Resolve(tt.raw)
			is.Equal(g, tt.wantG)
			is.Equal(voice, tt.wantVoice)
		})
	}
}

func TestVoiceMapFemaleDefault(t *testing.T) {
	is := is.New(t)
	voices := VoiceMap{Male: "m.wav", Female: "f.wav", DefaultGender: GenderFemale}
	g, voice := voices.Resolve("neither")
	is.Equal(g, GenderFemale)
	is.Equal(voice, "f.wav")
}
