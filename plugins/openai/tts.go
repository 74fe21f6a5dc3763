package openai

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chriscow/talking-history-go/pkg/ai/tts"
)

// Synthesizer produces speech with the OpenAI TTS API. Voice references for
// this provider are OpenAI voice names, not speaker WAV URLs.
type Synthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(apiKey string) *Synthesizer {
	return &Synthesizer{
		client: openai.NewClient(apiKey),
		model:  openai.TTSModel1HD,
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	voice := openai.SpeechVoice(req.VoiceReference)
	if voice == "" {
		voice = openai.VoiceOnyx
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	return data, nil
}
