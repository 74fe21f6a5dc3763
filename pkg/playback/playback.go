// Package playback keeps a continuously advancing visual, either a
// still-image crossfade or decoded video frames, synchronized to audio
// playback. All visual state lives on a single cooperative scheduler loop;
// the audio engine and the video decoder are reached only through the
// contracts below.
package playback

import (
	"image"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
)

const (
	// FadeWindow is the trailing span of audio during which the visual is
	// blended toward black. It matches the still-image fade step count at
	// the fixed step interval.
	FadeWindow = 2 * time.Second

	// DefaultFadeSteps is the number of blend increments in a crossfade.
	DefaultFadeSteps = 40

	// FadeStepInterval is the delay between crossfade frames.
	FadeStepInterval = 50 * time.Millisecond

	// CoarseTick is the clock polling cadence for completion and fade-out
	// detection.
	CoarseTick = 100 * time.Millisecond

	// FrameTick is the fallback frame cadence when a decoder reports no
	// frame rate.
	FrameTick = 33 * time.Millisecond
)

// Mode is the controller's playback state.
type Mode int32

const (
	ModeIdle Mode = iota
	ModePlaying
	ModePaused
	ModeFinished
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModePlaying:
		return "Playing"
	case ModePaused:
		return "Paused"
	case ModeFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Player is the audio engine's single music channel. The controller owns it
// exclusively; no two playback sessions are ever active at once.
type Player interface {
	Play(clip *media.AudioClip) error
	Pause()
	Resume()
	Stop()
	SetVolume(v float64)

	// Busy reports whether audio is loaded and has not finished. A paused
	// player is still busy.
	Busy() bool

	// Position returns the elapsed playback position.
	Position() time.Duration
}

// Display is the render surface. Frames arrive already composited; the
// display never blends or schedules anything itself.
type Display interface {
	ShowFrame(img image.Image)

	// ShowIdle restores the pre-recording idle visual.
	ShowIdle()
}

// FrameDecoder yields decoded video frames. Implementations return io.EOF
// from Next at end of stream; the feeder rewinds and keeps going.
type FrameDecoder interface {
	Next() (image.Image, error)
	Rewind() error

	// FPS returns the stream frame rate, or 0 when unknown.
	FPS() float64

	Close() error
}

// DecoderOpener opens a decoder for a video artifact at the given square
// canvas size. An open failure is not fatal to the session; playback
// degrades to the still portrait.
type DecoderOpener interface {
	Open(clip *media.VideoClip, size int) (FrameDecoder, error)
}
