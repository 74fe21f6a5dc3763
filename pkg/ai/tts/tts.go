// Package tts defines the speech-synthesis capability consumed by the
// synthesis stage.
package tts

import "context"

// Request describes a speech synthesis call. VoiceReference is a provider
// specific voice selector; the Replicate XTTS provider treats it as a
// speaker reference WAV URL, others map it to a named voice profile.
type Request struct {
	Text           string
	Language       string
	VoiceReference string
}

// SpeechSynthesizer renders text as speech and returns the encoded audio
// bytes (WAV). The caller decodes and, in video-capable pipelines,
// truncates the clip to the duration cap.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// SpeechSynthesizerFunc adapts a function to the SpeechSynthesizer interface.
type SpeechSynthesizerFunc func(ctx context.Context, req Request) ([]byte, error)

func (f SpeechSynthesizerFunc) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}
