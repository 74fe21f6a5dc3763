package replicate

import (
	"context"
	"fmt"

	replicate "github.com/replicate/replicate-go"
	"github.com/vincent-petithory/dataurl"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// WhisperTranscriber transcribes recordings with the hosted Whisper model.
type WhisperTranscriber struct {
	client *Client
	model  string
}

// NewWhisperTranscriber creates a transcriber. An empty model uses
// ModelWhisper.
func NewWhisperTranscriber(client *Client, model string) *WhisperTranscriber {
	if model == "" {
		model = ModelWhisper
	}
	return &WhisperTranscriber{client: client, model: model}
}

// Transcribe uploads the clip as a data URI and returns whatever text comes
// back. Silent audio yields an empty string, not an error.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, clip *media.AudioClip) (string, error) {
	if clip.IsEmpty() {
		return "", nil
	}

	audio := dataurl.New(media.EncodeWAV(clip), "audio/wav").String()
	out, err := w.client.run(ctx, w.model, replicate.PredictionInput{"audio": audio})
	if err != nil {
		return "", err
	}
	return transcriptFromOutput(out)
}

// transcriptFromOutput pulls the transcript out of the loosely typed
// prediction result. Whisper variants disagree on the output key. An output
// carrying no recognizable transcript is a provider fault and surfaces as an
// error for the invoker to classify, never as a silent recording.
func transcriptFromOutput(out replicate.PredictionOutput) (string, error) {
	if m, ok := out.(map[string]any); ok {
		if text, ok := m["transcription"].(string); ok {
			return text, nil
		}
		if text, ok := m["text"].(string); ok {
			return text, nil
		}
		return "", fmt.Errorf("transcript missing from prediction output")
	}
	text, err := outputString(out)
	if err != nil {
		return "", fmt.Errorf("unexpected whisper output: %w", err)
	}
	return text, nil
}
