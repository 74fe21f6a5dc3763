package replicate

import (
	"context"
	"fmt"

	replicate "github.com/replicate/replicate-go"

	"github.com/chriscow/talking-history-go/pkg/ai/tts"
)

// Synthesizer clones the reference voice with hosted XTTS and returns the
// synthesized WAV bytes.
type Synthesizer struct {
	client *Client
	model  string
}

// NewSynthesizer creates a synthesizer. An empty model uses ModelTTS.
func NewSynthesizer(client *Client, model string) *Synthesizer {
	if model == "" {
		model = ModelTTS
	}
	return &Synthesizer{client: client, model: model}
}

func (s *Synthesizer) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	language := req.Language
	if language == "" {
		language = "en"
	}

	out, err := s.client.run(ctx, s.model, replicate.PredictionInput{
		"text":          req.Text,
		"language":      language,
		"speaker":       req.VoiceReference,
		"cleanup_voice": true,
	})
	if err != nil {
		return nil, err
	}

	url, err := outputString(out)
	if err != nil {
		return nil, err
	}
	data, err := s.client.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch synthesized audio: %w", err)
	}
	return data, nil
}
