package openai

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// WhisperTranscriber transcribes recordings with the OpenAI Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a transcriber.
func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
		model:  openai.Whisper1,
	}
}

// Transcribe sends the clip as WAV. Empty audio is a silent success.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, clip *media.AudioClip) (string, error) {
	if clip.IsEmpty() {
		return "", nil
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		Language: "en",
		Format:   openai.AudioResponseFormatJSON,
		Reader:   bytes.NewReader(media.EncodeWAV(clip)),
		FilePath: "recording.wav", // the API keys format detection off the name
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}
