// Package session ties the interactive surface together: it gates the
// record control, feeds captured audio into the pipeline, drains run events
// into status-label updates, and hands completed bundles to playback.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/pipeline"
	"github.com/chriscow/talking-history-go/pkg/playback"
)

// MinRecording is the shortest capture worth transcribing. Anything below
// it is treated as an accidental click.
const MinRecording = 300 * time.Millisecond

// Recorder captures microphone audio. An open failure is terminal for the
// attempt, never retried.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (*media.AudioClip, error)
}

// ControlState describes which user controls are live and how the
// stop control is labelled.
type ControlState struct {
	CanRecord   bool
	CanPlayback bool

	// NewSession relabels the stop control as a start-new-session
	// affordance after natural completion.
	NewSession bool
}

// UI is the render surface for session chrome: the status label and the
// control row. Implementations run their own event loop; these calls must
// be cheap and non-blocking.
type UI interface {
	SetStatus(text string)
	SetControls(state ControlState)
}

// Config wires a Session.
type Config struct {
	Runner     *pipeline.Runner
	Controller *playback.Controller
	Recorder   Recorder
	UI         UI
	Logger     *slog.Logger
}

// Session is the one-per-window orchestrator. At most one pipeline run and
// one playback session are active at a time.
type Session struct {
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	run       *pipeline.Run
	bundle    *pipeline.Bundle
	recording bool
	closed    bool
}

// New creates a session and puts the UI in the idle, record-ready state.
func New(cfg Config) (*Session, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if cfg.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if cfg.Recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if cfg.UI == nil {
		return nil, fmt.Errorf("ui is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Session{cfg: cfg, log: cfg.Logger}
	s.toIdle("Click the microphone and ask about a historical figure")
	return s, nil
}

// OnPlaybackMode is the hook for the playback controller's mode changes.
// Wire it into playback.Config.OnModeChange.
func (s *Session) OnPlaybackMode(m playback.Mode) {
	switch m {
	case playback.ModeFinished:
		s.cfg.UI.SetStatus("Finished. Play it again, or start a new session")
		s.cfg.UI.SetControls(ControlState{CanRecord: true, CanPlayback: true, NewSession: true})
	case playback.ModeIdle:
		s.mu.Lock()
		hasBundle := s.bundle != nil
		processing := s.run != nil
		s.mu.Unlock()
		if !processing {
			s.cfg.UI.SetControls(ControlState{CanRecord: true, CanPlayback: hasBundle})
		}
	}
}

// ToggleRecord starts a capture, or stops it and launches the pipeline.
// While a run is processing the control is inert; the UI disables it too,
// but the gate here is what actually guarantees one run at a time.
func (s *Session) ToggleRecord(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.run != nil {
		s.mu.Unlock()
		return
	}
	if !s.recording {
		s.recording = true
		s.mu.Unlock()
		s.startRecording(ctx)
		return
	}
	s.recording = false
	s.mu.Unlock()
	s.finishRecording(ctx)
}

func (s *Session) startRecording(ctx context.Context) {
	s.cfg.Controller.Stop()
	if err := s.cfg.Recorder.Start(ctx); err != nil {
		s.log.Error("microphone open failed", slog.String("error", err.Error()))
		s.mu.Lock()
		s.recording = false
		s.mu.Unlock()
		s.toIdle("Error: microphone unavailable")
		return
	}
	s.cfg.UI.SetStatus("Listening... Click again to stop")
	s.cfg.UI.SetControls(ControlState{CanRecord: true})
}

func (s *Session) finishRecording(ctx context.Context) {
	clip, err := s.cfg.Recorder.Stop()
	if err != nil {
		s.log.Error("capture failed", slog.String("error", err.Error()))
		s.toIdle("Error: recording failed")
		return
	}
	if clip.Duration() < MinRecording {
		s.toIdle("Recording too short, try again")
		return
	}

	run := s.cfg.Runner.Start(ctx, clip)
	s.mu.Lock()
	s.run = run
	s.mu.Unlock()

	s.cfg.UI.SetStatus("Processing...")
	s.cfg.UI.SetControls(ControlState{})
	go s.drain(run)
}

// drain consumes the run's ordered event stream. It is the only reader of
// the channel and exits when the worker closes it.
func (s *Session) drain(run *pipeline.Run) {
	for ev := range run.Events() {
		switch ev.Type {
		case pipeline.EventProgress:
			s.cfg.UI.SetStatus(ev.Label)
		case pipeline.EventReady:
			s.mu.Lock()
			s.bundle = ev.Bundle
			s.mu.Unlock()
			s.cfg.UI.SetStatus(fmt.Sprintf("Speaking as %s", ev.Bundle.SubjectName))
			s.cfg.UI.SetControls(ControlState{CanRecord: true, CanPlayback: true})
			s.cfg.Controller.Play(ev.Bundle)
		case pipeline.EventFailed:
			s.log.Warn("run failed", slog.String("cause", ev.Cause))
			s.toIdle(ev.Cause)
		}
	}
	s.mu.Lock()
	if s.run == run {
		s.run = nil
	}
	s.mu.Unlock()
}

// Pause, Resume, Stop, Replay and SetVolume forward user controls to
// playback.

func (s *Session) Pause()              { s.cfg.Controller.Pause() }
func (s *Session) Resume()             { s.cfg.Controller.Resume() }
func (s *Session) Replay()             { s.cfg.Controller.Replay() }
func (s *Session) SetVolume(v float64) { s.cfg.Controller.SetVolume(v) }

// Stop halts playback. After natural completion this doubles as the
// start-new-session affordance; either way the session returns to the
// record-ready state with the previous bundle still replayable.
func (s *Session) Stop() {
	s.cfg.Controller.Stop()
	s.mu.Lock()
	hasBundle := s.bundle != nil
	s.mu.Unlock()
	s.cfg.UI.SetStatus("Click the microphone and ask about a historical figure")
	s.cfg.UI.SetControls(ControlState{CanRecord: true, CanPlayback: hasBundle})
}

// Processing reports whether a pipeline run is in flight.
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil
}

// Bundle returns the most recent completed bundle, or nil.
func (s *Session) Bundle() *pipeline.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// Close abandons any in-flight run and tears down playback. The abandoned
// worker exits without posting results.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	run := s.run
	s.run = nil
	s.mu.Unlock()

	if run != nil {
		run.Abandon()
	}
	s.cfg.Controller.Close()
}

func (s *Session) toIdle(status string) {
	s.mu.Lock()
	hasBundle := s.bundle != nil
	s.mu.Unlock()
	s.cfg.UI.SetStatus(status)
	s.cfg.UI.SetControls(ControlState{CanRecord: true, CanPlayback: hasBundle})
}
