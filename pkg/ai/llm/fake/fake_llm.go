package fake

import (
	"context"
	"sync"
)

// FakeGenerator is a fake text generator for testing. It replays a fixed
// sequence of responses, optionally preceded by queued errors.
type FakeGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

// NewFakeGenerator creates a fake generator with predefined responses.
func NewFakeGenerator(responses ...string) *FakeGenerator {
	if len(responses) == 0 {
		responses = []string{`{"character_name": "Fake Figure", "gender": "male", "monologue": "A fake monologue."}`}
	}
	return &FakeGenerator{responses: responses}
}

// FailFirst queues errors to be returned before any response.
func (f *FakeGenerator) FailFirst(errs ...error) *FakeGenerator {
	f.errs = errs
	return f
}

// Generate returns the next canned response.
func (f *FakeGenerator) Generate(ctx context.Context, prompt, systemInstructions string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	resp := f.responses[(f.calls-1)%len(f.responses)]
	return resp, nil
}

// Calls returns how many times Generate was invoked.
func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Prompts returns the prompts seen so far.
func (f *FakeGenerator) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
