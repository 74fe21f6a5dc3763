// Package stt defines the speech-to-text capability consumed by the
// transcription stage of the pipeline.
package stt

import (
	"context"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// Transcriber converts a recorded utterance into text.
//
// Implementations must not fail on silent or unintelligible audio; they
// return an empty string instead. Whatever text comes back, including the
// empty string, is handed to the composition stage as-is.
type Transcriber interface {
	Transcribe(ctx context.Context, clip *media.AudioClip) (string, error)
}

// TranscriberFunc adapts a function to the Transcriber interface.
type TranscriberFunc func(ctx context.Context, clip *media.AudioClip) (string, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, clip *media.AudioClip) (string, error) {
	return f(ctx, clip)
}
