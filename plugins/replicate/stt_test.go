package replicate

import (
	"testing"

	"github.com/matryer/is"
	replicate "github.com/replicate/replicate-go"
)

func TestTranscriptFromOutput(t *testing.T) {
	tests := []struct {
		name    string
		out     replicate.PredictionOutput
		want    string
		wantErr bool
	}{
		{"transcription key", map[string]any{"transcription": "hello"}, "hello", false},
		{"text key", map[string]any{"text": "hello"}, "hello", false},
		{"transcription wins over text", map[string]any{"transcription": "a", "text": "b"}, "a", false},
		{"empty transcription is success", map[string]any{"transcription": ""}, "", false},
		{"plain string", "hello", "hello", false},
		{"map without transcript", map[string]any{"segments": []any{}}, "", true},
		{"nil output", nil, "", true},
		{"empty list", []any{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got, err := transcriptFromOutput(tt.out)
			if tt.wantErr {
				is.True(err != nil)
				return
			}
			is.NoErr(err)
			is.Equal(got, tt.want)
		})
	}
}
