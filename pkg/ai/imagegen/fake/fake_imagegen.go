package fake

import (
	"context"
	"sync"

	"github.com/chriscow/talking-history-go/pkg/ai/imagegen"
)

// FakeImageGenerator returns fixed URLs, optionally after queued errors.
type FakeImageGenerator struct {
	mu    sync.Mutex
	urls  []string
	errs  []error
	calls int
}

// NewFakeImageGenerator creates a fake generator returning the given URLs.
func NewFakeImageGenerator(urls ...string) *FakeImageGenerator {
	if len(urls) == 0 {
		urls = []string{"https://fake.example/portrait.png"}
	}
	return &FakeImageGenerator{urls: urls}
}

// FailFirst queues errors to be returned before any success.
func (f *FakeImageGenerator) FailFirst(errs ...error) *FakeImageGenerator {
	f.errs = errs
	return f
}

// Generate returns the configured URLs.
func (f *FakeImageGenerator) Generate(ctx context.Context, req imagegen.Request) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return append([]string(nil), f.urls...), nil
}

// Calls returns how many times Generate was invoked.
func (f *FakeImageGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
