// Package pipeline implements the generation pipeline: a linear sequence of
// fallible stages (Transcribe, Compose, Illustrate, Synthesize, optionally
// Animate) executed on one background goroutine per run, reporting
// progress as ordered events and handing a completed artifact bundle to
// playback.
package pipeline

import (
	"fmt"
	"image"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// Gender selects the synthesis voice for the identified figure.
type Gender int32

const (
	GenderMale Gender = iota
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return fmt.Sprintf("Unknown(%d)", g)
	}
}

// RunStatus represents the current stage of a pipeline run.
type RunStatus int32

const (
	StatusRecording RunStatus = iota
	StatusTranscribing
	StatusComposing
	StatusIllustrating
	StatusSynthesizing
	StatusAnimating
	StatusReady
	StatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case StatusRecording:
		return "Recording"
	case StatusTranscribing:
		return "Transcribing"
	case StatusComposing:
		return "Composing"
	case StatusIllustrating:
		return "Illustrating"
	case StatusAnimating:
		return "Animating"
	case StatusSynthesizing:
		return "Synthesizing"
	case StatusReady:
		return "Ready"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Terminal reports whether the status is an exit point of the run.
func (s RunStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Bundle is the complete artifact set produced by a successful run. Fields
// are populated strictly in stage order and the bundle is immutable once it
// is published with the Ready status; playback never sees a partial bundle.
type Bundle struct {
	Transcript    string
	SubjectName   string
	SubjectGender Gender
	MonologueText string
	Portraits     []image.Image
	Speech        *media.AudioClip
	Video         *media.VideoClip // nil outside video-capable variants
}

// Complete reports whether every artifact required for playback is present.
// The transcript is deliberately not checked: an empty best-effort
// transcription is allowed through the whole pipeline.
func (b *Bundle) Complete() bool {
	return b != nil &&
		b.MonologueText != "" &&
		len(b.Portraits) > 0 &&
		!b.Speech.IsEmpty()
}
