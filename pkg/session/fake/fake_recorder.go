// Package fake provides test doubles for the session collaborators.
package fake

import (
	"context"
	"sync"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// FakeRecorder hands back a canned clip when the capture stops.
type FakeRecorder struct {
	mu       sync.Mutex
	clip     *media.AudioClip
	startErr error
	stopErr  error
	starts   int
	stops    int
}

// NewFakeRecorder creates a recorder that captures the given clip.
func NewFakeRecorder(clip *media.AudioClip) *FakeRecorder {
	return &FakeRecorder{clip: clip}
}

// FailStart makes Start return err.
func (r *FakeRecorder) FailStart(err error) *FakeRecorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startErr = err
	return r
}

// FailStop makes Stop return err.
func (r *FakeRecorder) FailStop(err error) *FakeRecorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopErr = err
	return r
}

func (r *FakeRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	return r.startErr
}

func (r *FakeRecorder) Stop() (*media.AudioClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	if r.stopErr != nil {
		return nil, r.stopErr
	}
	return r.clip, nil
}

// Starts returns how many captures began.
func (r *FakeRecorder) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}
