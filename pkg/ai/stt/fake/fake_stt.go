package fake

import (
	"context"
	"sync"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// DefaultTranscript is used when no transcript is provided.
const DefaultTranscript = "This is a fake transcript from the fake STT provider."

// FakeTranscriber is a fake speech-to-text implementation for testing.
type FakeTranscriber struct {
	mu         sync.Mutex
	transcript string
	errs       []error
	calls      int
}

// NewFakeTranscriber creates a fake transcriber with a fixed transcript.
func NewFakeTranscriber(transcript string) *FakeTranscriber {
	if transcript == "" {
		transcript = DefaultTranscript
	}
	return &FakeTranscriber{transcript: transcript}
}

// FailFirst queues errors to be returned by the first len(errs) calls,
// after which the fixed transcript is returned.
func (f *FakeTranscriber) FailFirst(errs ...error) *FakeTranscriber {
	f.errs = errs
	return f
}

// Transcribe returns the configured transcript, consuming queued errors first.
func (f *FakeTranscriber) Transcribe(ctx context.Context, clip *media.AudioClip) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return f.transcript, nil
}

// Calls returns how many times Transcribe was invoked.
func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
