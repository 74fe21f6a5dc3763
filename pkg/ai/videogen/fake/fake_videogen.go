package fake

import (
	"context"
	"sync"

	"github.com/chriscow/talking-history-go/pkg/ai/videogen"
)

// FakeVideoGenerator returns a fixed URL, optionally after queued errors.
type FakeVideoGenerator struct {
	mu    sync.Mutex
	url   string
	errs  []error
	calls int
	last  videogen.Request
}

// NewFakeVideoGenerator creates a fake video generator.
func NewFakeVideoGenerator(url string) *FakeVideoGenerator {
	if url == "" {
		url = "https://fake.example/clip.mp4"
	}
	return &FakeVideoGenerator{url: url}
}

// FailFirst queues errors to be returned before any success.
func (f *FakeVideoGenerator) FailFirst(errs ...error) *FakeVideoGenerator {
	f.errs = errs
	return f
}

// Generate returns the configured URL.
func (f *FakeVideoGenerator) Generate(ctx context.Context, req videogen.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return f.url, nil
}

// Calls returns how many times Generate was invoked.
func (f *FakeVideoGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequest returns the most recent request.
func (f *FakeVideoGenerator) LastRequest() videogen.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
