package playback_test

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/pipeline"
	"github.com/chriscow/talking-history-go/pkg/playback"
	"github.com/chriscow/talking-history-go/pkg/playback/fake"
)

func testBundle(seconds float64, video bool) *pipeline.Bundle {
	b := &pipeline.Bundle{
		SubjectName:   "Test Figure",
		MonologueText: "A monologue. Thank you.",
		Portraits:     []image.Image{white(16)},
		Speech:        speechClip(seconds),
	}
	if video {
		b.Video = &media.VideoClip{Path: "clip.mp4"}
	}
	return b
}

type controllerEnv struct {
	player  *fake.FakePlayer
	display *fake.FakeDisplay
	ctrl    *playback.Controller
}

func newControllerEnv(t *testing.T, opener playback.DecoderOpener) *controllerEnv {
	t.Helper()
	env := &controllerEnv{
		player:  fake.NewFakePlayer(),
		display: fake.NewFakeDisplay(),
	}
	ctrl, err := playback.NewController(playback.Config{
		Player:           env.player,
		Display:          env.display,
		Opener:           opener,
		CanvasSize:       16,
		FadeSteps:        4,
		FadeStepInterval: time.Millisecond,
		PollInterval:     5 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	env.ctrl = ctrl
	t.Cleanup(ctrl.Close)
	return env
}

func TestControllerStillPlaybackLifecycle(t *testing.T) {
	is := is.New(t)
	env := newControllerEnv(t, nil)

	is.Equal(env.ctrl.Mode(), playback.ModeIdle)

	env.ctrl.Play(testBundle(10, false))
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "never started playing")

	// Fade-in paints steps+1 frames from black to the portrait.
	eventually(t, func() bool { return env.display.FrameCount() >= 5 }, "fade-in never completed")

	// Entering the trailing window triggers the fade-out.
	before := env.display.FrameCount()
	env.player.Advance(9 * time.Second)
	eventually(t, func() bool { return env.display.FrameCount() > before }, "fade-out never started")

	// Natural completion: audio ran out while not paused.
	env.player.Advance(2 * time.Second)
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModeFinished }, "never finished")
}

func TestControllerRefusesIncompleteBundle(t *testing.T) {
	is := is.New(t)
	env := newControllerEnv(t, nil)

	env.ctrl.Play(&pipeline.Bundle{MonologueText: "words but nothing else"})
	time.Sleep(30 * time.Millisecond)
	is.Equal(env.ctrl.Mode(), playback.ModeIdle)
	is.Equal(env.display.FrameCount(), 0)
}

func TestControllerPauseAtomicity(t *testing.T) {
	is := is.New(t)
	env := newControllerEnv(t, nil)

	// A long fade keeps visual work in flight while we pause.
	ctrl, err := playback.NewController(playback.Config{
		Player:           env.player,
		Display:          env.display,
		CanvasSize:       16,
		FadeSteps:        1000,
		FadeStepInterval: time.Millisecond,
		PollInterval:     5 * time.Millisecond,
	})
	is.NoErr(err)
	defer ctrl.Close()

	ctrl.Play(testBundle(10, false))
	eventually(t, func() bool { return env.display.FrameCount() >= 3 }, "no frames before pause")

	ctrl.Pause()
	eventually(t, func() bool { return ctrl.Mode() == playback.ModePaused }, "never paused")
	is.True(env.player.Paused())

	time.Sleep(20 * time.Millisecond) // drain in-flight fade posts
	pos := env.player.Position()
	frames := env.display.FrameCount()

	// Arbitrary wait: neither audio position nor visual cursor moves.
	time.Sleep(50 * time.Millisecond)
	is.Equal(env.player.Position(), pos)
	is.Equal(env.display.FrameCount(), frames)

	ctrl.Resume()
	eventually(t, func() bool { return ctrl.Mode() == playback.ModePlaying }, "never resumed")
	is.True(!env.player.Paused())
	eventually(t, func() bool { return env.display.FrameCount() > frames }, "fade never continued")
}

func TestControllerPauseIllegalOutsidePlaying(t *testing.T) {
	is := is.New(t)
	env := newControllerEnv(t, nil)

	env.ctrl.Pause()
	env.ctrl.Resume()
	time.Sleep(20 * time.Millisecond)
	is.Equal(env.ctrl.Mode(), playback.ModeIdle)
}

func TestControllerStopAndReplay(t *testing.T) {
	is := is.New(t)
	env := newControllerEnv(t, nil)

	env.ctrl.Play(testBundle(10, false))
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "never started")

	env.ctrl.Stop()
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModeIdle }, "never stopped")
	is.True(env.display.IdleCount() >= 1)

	// The bundle survives Stop, so Replay restarts from zero.
	env.ctrl.Replay()
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "replay never started")
	is.True(env.player.Position() < time.Second)
}

func TestControllerReplayAfterFinish(t *testing.T) {
	env := newControllerEnv(t, nil)

	env.ctrl.Play(testBundle(1, false))
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "never started")
	env.player.Advance(time.Second)
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModeFinished }, "never finished")

	env.ctrl.Replay()
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "replay never started")
}

func TestControllerVideoMode(t *testing.T) {
	is := is.New(t)
	dec := fake.NewScriptedDecoder(200, white(16), media.Black(16))
	opener := fake.NewFakeOpener(dec)
	env := newControllerEnv(t, opener)

	env.ctrl.Play(testBundle(10, true))
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "never started")
	eventually(t, func() bool { return env.display.FrameCount() >= 3 }, "no video frames shown")
	is.Equal(opener.Opens(), 1)

	env.ctrl.Stop()
	eventually(t, dec.Closed, "decoder never released")
	is.Equal(dec.CloseCount(), 1)
}

func TestControllerDegradesWhenDecoderOpenFails(t *testing.T) {
	is := is.New(t)
	opener := fake.NewFakeOpener(nil).FailWith(errors.New("no such codec"))
	env := newControllerEnv(t, opener)

	env.ctrl.Play(testBundle(10, true))
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "never started")

	// Still-image fallback: the fade-in paints frames anyway.
	eventually(t, func() bool { return env.display.FrameCount() >= 5 }, "still fallback never painted")
	is.Equal(opener.Opens(), 1)
}

func TestControllerDegradesOnMidStreamDecodeFailure(t *testing.T) {
	dec := fake.NewScriptedDecoder(200, white(16), media.Black(16)).FailAtFrame(2)
	opener := fake.NewFakeOpener(dec)
	env := newControllerEnv(t, opener)

	env.ctrl.Play(testBundle(10, true))
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "never started")

	// The dead feed falls back to the portrait; the session keeps going.
	eventually(t, dec.Closed, "failed decoder never released")
	eventually(t, func() bool { return env.ctrl.Mode() == playback.ModePlaying }, "session did not survive")
}

func TestControllerVolumeClamped(t *testing.T) {
	is := is.New(t)
	env := newControllerEnv(t, nil)

	env.ctrl.SetVolume(1.5)
	is.Equal(env.player.Volume(), 1.0)
	is.Equal(env.ctrl.Volume(), 1.0)

	env.ctrl.SetVolume(-0.25)
	is.Equal(env.player.Volume(), 0.0)

	env.ctrl.SetVolume(0.6)
	is.Equal(env.player.Volume(), 0.6)
}
