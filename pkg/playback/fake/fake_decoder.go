package fake

import (
	"errors"
	"image"
	"io"
	"sync"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/playback"
)

// ScriptedDecoder replays a fixed frame list, signalling io.EOF at the end
// so the feeder's rewind loop can be exercised.
type ScriptedDecoder struct {
	mu      sync.Mutex
	frames  []image.Image
	fps     float64
	idx     int
	rewinds int
	closed  int
	failAt  int // 1-based frame index that errors; 0 disables
}

// NewScriptedDecoder creates a decoder over the given frames.
func NewScriptedDecoder(fps float64, frames ...image.Image) *ScriptedDecoder {
	return &ScriptedDecoder{frames: frames, fps: fps}
}

// FailAtFrame makes the nth Next call (1-based, counted across rewinds by
// position) return an error instead of a frame.
func (d *ScriptedDecoder) FailAtFrame(n int) *ScriptedDecoder {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAt = n
	return d
}

func (d *ScriptedDecoder) Next() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idx >= len(d.frames) {
		return nil, io.EOF
	}
	if d.failAt > 0 && d.idx+1 == d.failAt {
		return nil, errors.New("decode failure")
	}
	frame := d.frames[d.idx]
	d.idx++
	return frame, nil
}

func (d *ScriptedDecoder) Rewind() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idx = 0
	d.rewinds++
	return nil
}

func (d *ScriptedDecoder) FPS() float64 {
	return d.fps
}

func (d *ScriptedDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

// Rewinds returns how many times the stream looped.
func (d *ScriptedDecoder) Rewinds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rewinds
}

// Closed reports whether Close has been called.
func (d *ScriptedDecoder) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed > 0
}

// CloseCount returns how many times Close was called.
func (d *ScriptedDecoder) CloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// FakeOpener hands out a prepared decoder, or fails.
type FakeOpener struct {
	mu      sync.Mutex
	decoder playback.FrameDecoder
	err     error
	opens   int
}

// NewFakeOpener creates an opener returning the given decoder.
func NewFakeOpener(dec playback.FrameDecoder) *FakeOpener {
	return &FakeOpener{decoder: dec}
}

// FailWith makes every Open call return err.
func (o *FakeOpener) FailWith(err error) *FakeOpener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
	return o
}

func (o *FakeOpener) Open(clip *media.VideoClip, size int) (playback.FrameDecoder, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.decoder, nil
}

// Opens returns how many times Open was called.
func (o *FakeOpener) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}
