package playback

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/pipeline"
	"github.com/chriscow/talking-history-go/pkg/sched"
)

// Config holds the collaborators and tuning for a Controller.
type Config struct {
	Player  Player
	Display Display

	// Opener is optional; without it video artifacts play as stills.
	Opener DecoderOpener

	// Loop is the render loop. When nil the controller creates and owns one.
	Loop *sched.Loop

	CanvasSize       int
	FadeSteps        int
	FadeStepInterval time.Duration
	FadeWindow       time.Duration
	PollInterval     time.Duration
	Logger           *slog.Logger

	// OnModeChange, when set, fires on the render loop after every mode
	// transition. It must not block.
	OnModeChange func(Mode)
}

// Controller owns playback state and mediates user controls. All internal
// state is confined to the render loop; the exported methods post onto it
// and may be called from any goroutine.
type Controller struct {
	cfg     Config
	loop    *sched.Loop
	ownLoop bool
	log     *slog.Logger

	mode   atomic.Int32
	volume atomic.Uint64 // math.Float64bits

	// Everything below is loop-confined.
	bundle    *pipeline.Bundle
	clock     *Clock
	fade      *Crossfade
	fadeTask  *sched.Task
	pollTask  *sched.Task
	feeder    *FrameFeeder
	fadingOut bool
	current   *image.NRGBA // most recent still frame shown
}

// NewController creates a controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Player == nil {
		return nil, fmt.Errorf("player is required")
	}
	if cfg.Display == nil {
		return nil, fmt.Errorf("display is required")
	}
	if cfg.CanvasSize <= 0 {
		cfg.CanvasSize = pipeline.DefaultCanvasSize
	}
	if cfg.FadeSteps <= 0 {
		cfg.FadeSteps = DefaultFadeSteps
	}
	if cfg.FadeStepInterval <= 0 {
		cfg.FadeStepInterval = FadeStepInterval
	}
	if cfg.FadeWindow <= 0 {
		cfg.FadeWindow = FadeWindow
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = CoarseTick
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Controller{
		cfg: cfg,
		log: cfg.Logger,
	}
	c.loop = cfg.Loop
	if c.loop == nil {
		c.loop = sched.NewLoop()
		c.ownLoop = true
	}
	c.volume.Store(math.Float64bits(1))
	return c, nil
}

// Mode returns the current playback mode.
func (c *Controller) Mode() Mode {
	return Mode(c.mode.Load())
}

// Play starts playback of a completed bundle, replacing any session in
// progress.
func (c *Controller) Play(b *pipeline.Bundle) {
	c.loop.Post(func() { c.play(b) })
}

// Pause freezes audio and visual together. Legal only while playing.
func (c *Controller) Pause() {
	c.loop.Post(c.pause)
}

// Resume continues from the paused position. Legal only while paused.
func (c *Controller) Resume() {
	c.loop.Post(c.resume)
}

// Stop halts playback, releases the decoder, and restores the idle display.
// The bundle is kept so Replay can restart it.
func (c *Controller) Stop() {
	c.loop.Post(func() {
		c.reset()
		c.cfg.Display.ShowIdle()
	})
}

// Replay restarts the previous bundle from position zero. Legal from
// Finished, or from Idle when a prior bundle exists.
func (c *Controller) Replay() {
	c.loop.Post(func() {
		mode := c.Mode()
		if (mode == ModeFinished || mode == ModeIdle) && c.bundle != nil {
			c.play(c.bundle)
		}
	})
}

// SetVolume clamps v to [0, 1] and applies it immediately regardless of
// state.
func (c *Controller) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume.Store(math.Float64bits(v))
	c.cfg.Player.SetVolume(v)
}

// Volume returns the current volume.
func (c *Controller) Volume() float64 {
	return math.Float64frombits(c.volume.Load())
}

// Close stops playback and, if the controller owns the render loop, shuts
// it down. Unlike Stop it waits for the teardown to run, so the decoder is
// released before Close returns.
func (c *Controller) Close() {
	done := make(chan struct{})
	c.loop.Post(func() {
		c.reset()
		c.cfg.Display.ShowIdle()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	if c.ownLoop {
		c.loop.Stop()
	}
}

func (c *Controller) play(b *pipeline.Bundle) {
	if !b.Complete() {
		c.log.Warn("refusing to play incomplete bundle")
		return
	}
	c.reset()
	c.bundle = b

	c.cfg.Player.SetVolume(c.Volume())
	if err := c.cfg.Player.Play(b.Speech); err != nil {
		c.log.Error("audio playback failed", slog.String("error", err.Error()))
		c.cfg.Display.ShowIdle()
		return
	}
	c.clock = NewClock(c.cfg.Player, b.Speech.Duration(), c.cfg.FadeWindow)
	c.current = media.ResizeSquare(b.Portraits[0], c.cfg.CanvasSize)

	if b.Video != nil && c.cfg.Opener != nil {
		dec, err := c.cfg.Opener.Open(b.Video, c.cfg.CanvasSize)
		if err != nil {
			c.log.Warn("video decoder open failed, using still portrait",
				slog.String("error", err.Error()))
		} else {
			c.feeder = NewFrameFeeder(c.loop, dec, c.cfg.Display, c.clock, c.cfg.CanvasSize, c.degrade)
			c.feeder.Start()
		}
	}

	// Still mode opens with a fade-in from black; the feeder paints its own
	// frames in video mode.
	if c.feeder == nil {
		c.startFade(media.Black(c.cfg.CanvasSize), c.current)
	}

	c.setMode(ModePlaying)
	c.schedulePoll()
	c.log.Info("playback started",
		slog.Duration("duration", b.Speech.Duration()),
		slog.Bool("video", c.feeder != nil))
}

func (c *Controller) pause() {
	if c.Mode() != ModePlaying {
		return
	}
	// Audio, fade stepping, and frame feeding all freeze on this one loop
	// task, so the user never observes them disagree.
	c.cfg.Player.Pause()
	if c.feeder != nil {
		c.feeder.Pause()
	}
	c.fadeTask.Cancel()
	c.setMode(ModePaused)
}

func (c *Controller) resume() {
	if c.Mode() != ModePaused {
		return
	}
	c.cfg.Player.Resume()
	if c.feeder != nil {
		c.feeder.Resume()
	}
	if c.fade != nil && !c.fade.Done() {
		c.fadeTask = c.loop.After(c.cfg.FadeStepInterval, c.stepFade)
	}
	c.setMode(ModePlaying)
}

// reset returns the controller to Idle, cancelling the poll, any in-flight
// fade, and the decode worker. The bundle survives for Replay.
func (c *Controller) reset() {
	c.cfg.Player.Stop()
	c.pollTask.Cancel()
	c.pollTask = nil
	c.fadeTask.Cancel()
	c.fadeTask = nil
	c.fade = nil
	c.fadingOut = false
	if c.feeder != nil {
		c.feeder.Stop()
		c.feeder = nil
	}
	c.setMode(ModeIdle)
}

func (c *Controller) schedulePoll() {
	c.pollTask = c.loop.After(c.cfg.PollInterval, c.poll)
}

func (c *Controller) poll() {
	if c.Mode() != ModePlaying {
		c.schedulePoll()
		return
	}

	if !c.cfg.Player.Busy() {
		c.finish()
		return
	}

	if c.feeder == nil && !c.fadingOut && c.clock.InFadeWindow() {
		c.fadingOut = true
		c.startFade(c.current, media.Black(c.cfg.CanvasSize))
	}

	c.schedulePoll()
}

// finish handles natural completion: audio ran out while not paused. The
// final visual stays on screen and the decoder is held until Stop or
// Replay.
func (c *Controller) finish() {
	if c.feeder != nil {
		c.feeder.Pause()
	}
	c.fadeTask.Cancel()
	c.fadeTask = nil
	c.setMode(ModeFinished)
	c.log.Info("playback finished")
}

// startFade begins a crossfade, cancelling any fade already in flight. At
// most one fade schedule exists per controller.
func (c *Controller) startFade(from, to image.Image) {
	c.fadeTask.Cancel()
	c.fade = NewCrossfade(from, to, c.cfg.FadeSteps)
	c.stepFade()
}

func (c *Controller) stepFade() {
	frame, ok := c.fade.Next()
	if !ok {
		c.fade = nil
		c.fadeTask = nil
		return
	}
	c.current = frame
	c.cfg.Display.ShowFrame(frame)
	c.fadeTask = c.loop.After(c.cfg.FadeStepInterval, c.stepFade)
}

// degrade drops a dead video feed and falls back to the still portrait.
// The session keeps going: a portrait is always available once a bundle is
// ready.
func (c *Controller) degrade(err error) {
	if c.feeder == nil {
		return
	}
	c.log.Warn("video feed failed, degrading to still portrait",
		slog.String("error", err.Error()))
	c.feeder = nil
	c.current = media.ResizeSquare(c.bundle.Portraits[0], c.cfg.CanvasSize)
	c.cfg.Display.ShowFrame(c.current)
}

func (c *Controller) setMode(m Mode) {
	if Mode(c.mode.Swap(int32(m))) != m && c.cfg.OnModeChange != nil {
		c.cfg.OnModeChange(m)
	}
}
