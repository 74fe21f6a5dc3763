package fake

import (
	"image"
	"sync"
)

// FakeDisplay records every frame it is asked to show.
type FakeDisplay struct {
	mu     sync.Mutex
	frames []image.Image
	idle   int
}

// NewFakeDisplay creates an empty display.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{}
}

func (d *FakeDisplay) ShowFrame(img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, img)
}

func (d *FakeDisplay) ShowIdle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idle++
}

// Frames returns a copy of every frame shown so far.
func (d *FakeDisplay) Frames() []image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]image.Image(nil), d.frames...)
}

// FrameCount returns how many frames were shown.
func (d *FakeDisplay) FrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

// IdleCount returns how many times the idle visual was restored.
func (d *FakeDisplay) IdleCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idle
}
