package playback

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/sched"
)

// FrameFeeder decodes video frames on its own worker goroutine and posts
// composited frames to the render loop. The worker never touches render
// state directly; it only observes the pause and stop flags and hands
// finished frames over.
//
// The underlying clip loops: end of stream rewinds to frame zero, so the
// video length never has to match the audio length.
type FrameFeeder struct {
	loop    *sched.Loop
	dec     FrameDecoder
	display Display
	clock   *Clock
	size    int

	// onError fires on the render loop if decoding dies mid-session; the
	// controller degrades to the still portrait.
	onError func(error)

	paused  atomic.Bool
	stopped atomic.Bool
	done    chan struct{}
}

// NewFrameFeeder wires a feeder over an open decoder. The feeder takes
// ownership of the decoder and closes it when the worker exits.
func NewFrameFeeder(loop *sched.Loop, dec FrameDecoder, display Display, clock *Clock, size int, onError func(error)) *FrameFeeder {
	if onError == nil {
		onError = func(error) {}
	}
	return &FrameFeeder{
		loop:    loop,
		dec:     dec,
		display: display,
		clock:   clock,
		size:    size,
		onError: onError,
		done:    make(chan struct{}),
	}
}

// Start launches the decode worker.
func (f *FrameFeeder) Start() {
	go f.run()
}

// Pause freezes frame advance. The decoder stays open so Resume continues
// from the same frame.
func (f *FrameFeeder) Pause() { f.paused.Store(true) }

// Resume continues frame advance after a pause.
func (f *FrameFeeder) Resume() { f.paused.Store(false) }

// Stop terminates the worker and releases the decoder. It is idempotent and
// safe to call from the render loop.
func (f *FrameFeeder) Stop() {
	f.stopped.Store(true)
}

// Done is closed once the worker has exited and the decoder is released.
func (f *FrameFeeder) Done() <-chan struct{} {
	return f.done
}

func (f *FrameFeeder) interval() time.Duration {
	if fps := f.dec.FPS(); fps > 0 {
		return time.Duration(float64(time.Second) / fps)
	}
	return FrameTick
}

func (f *FrameFeeder) run() {
	defer close(f.done)
	defer f.dec.Close()

	ticker := time.NewTicker(f.interval())
	defer ticker.Stop()

	for range ticker.C {
		if f.stopped.Load() {
			return
		}
		if f.paused.Load() {
			continue
		}

		frame, err := f.dec.Next()
		if errors.Is(err, io.EOF) {
			if err := f.dec.Rewind(); err != nil {
				f.fail(err)
				return
			}
			continue
		}
		if err != nil {
			f.fail(err)
			return
		}

		out := media.ResizeSquare(frame, f.size)
		if alpha := f.clock.FadeAlpha(); alpha > 0 {
			out = media.BlendToBlack(out, alpha)
		}
		f.loop.Post(func() {
			if !f.stopped.Load() {
				f.display.ShowFrame(out)
			}
		})
	}
}

func (f *FrameFeeder) fail(err error) {
	if f.stopped.Load() {
		return
	}
	f.loop.Post(func() { f.onError(err) })
}
