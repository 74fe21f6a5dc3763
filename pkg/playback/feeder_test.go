package playback_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/playback"
	"github.com/chriscow/talking-history-go/pkg/playback/fake"
	"github.com/chriscow/talking-history-go/pkg/sched"
)

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func startedClock(t *testing.T, seconds float64) (*fake.FakePlayer, *playback.Clock) {
	t.Helper()
	player := fake.NewFakePlayer()
	if err := player.Play(speechClip(seconds)); err != nil {
		t.Fatal(err)
	}
	return player, playback.NewClock(player, time.Duration(seconds*float64(time.Second)), 2*time.Second)
}

func TestFeederLoopsAtEndOfStream(t *testing.T) {
	is := is.New(t)
	loop := sched.NewLoop()
	defer loop.Stop()

	_, clock := startedClock(t, 30)
	dec := fake.NewScriptedDecoder(200, media.Black(8), white(8), media.Black(8))
	display := fake.NewFakeDisplay()

	feeder := playback.NewFrameFeeder(loop, dec, display, clock, 8, nil)
	feeder.Start()
	defer feeder.Stop()

	// More frames than the clip holds means the stream rewound.
	eventually(t, func() bool { return display.FrameCount() > 6 }, "frames never looped")
	is.True(dec.Rewinds() >= 1)
}

func TestFeederPauseFreezesFrames(t *testing.T) {
	is := is.New(t)
	loop := sched.NewLoop()
	defer loop.Stop()

	_, clock := startedClock(t, 30)
	dec := fake.NewScriptedDecoder(200, media.Black(8), white(8))
	display := fake.NewFakeDisplay()

	feeder := playback.NewFrameFeeder(loop, dec, display, clock, 8, nil)
	feeder.Start()
	defer feeder.Stop()

	eventually(t, func() bool { return display.FrameCount() >= 2 }, "no frames before pause")

	feeder.Pause()
	time.Sleep(20 * time.Millisecond) // let in-flight posts settle
	frozen := display.FrameCount()
	time.Sleep(50 * time.Millisecond)
	is.Equal(display.FrameCount(), frozen)

	// The decoder stays open across a pause.
	is.True(!dec.Closed())

	feeder.Resume()
	eventually(t, func() bool { return display.FrameCount() > frozen }, "frames never resumed")
}

func TestFeederStopReleasesDecoder(t *testing.T) {
	is := is.New(t)
	loop := sched.NewLoop()
	defer loop.Stop()

	_, clock := startedClock(t, 30)
	dec := fake.NewScriptedDecoder(200, media.Black(8))
	display := fake.NewFakeDisplay()

	feeder := playback.NewFrameFeeder(loop, dec, display, clock, 8, nil)
	feeder.Start()
	feeder.Stop()

	<-feeder.Done()
	is.Equal(dec.CloseCount(), 1)
}

func TestFeederReportsDecodeFailure(t *testing.T) {
	is := is.New(t)
	loop := sched.NewLoop()
	defer loop.Stop()

	_, clock := startedClock(t, 30)
	dec := fake.NewScriptedDecoder(200, media.Black(8), white(8)).FailAtFrame(2)
	display := fake.NewFakeDisplay()

	var failed atomic.Bool
	feeder := playback.NewFrameFeeder(loop, dec, display, clock, 8, func(error) {
		failed.Store(true)
	})
	feeder.Start()

	eventually(t, failed.Load, "decode failure never reported")
	<-feeder.Done()
	is.True(dec.Closed())
}

func TestFeederAppliesFadeNearEnd(t *testing.T) {
	is := is.New(t)
	loop := sched.NewLoop()
	defer loop.Stop()

	player, clock := startedClock(t, 10)
	player.Advance(10 * time.Second) // alpha 1: every frame is full black

	dec := fake.NewScriptedDecoder(200, white(8), white(8))
	display := fake.NewFakeDisplay()

	feeder := playback.NewFrameFeeder(loop, dec, display, clock, 8, nil)
	feeder.Start()
	defer feeder.Stop()

	eventually(t, func() bool { return display.FrameCount() >= 1 }, "no frames shown")

	frame := display.Frames()[0]
	r, g, b, _ := frame.At(4, 4).RGBA()
	is.Equal(r, uint32(0))
	is.Equal(g, uint32(0))
	is.Equal(b, uint32(0))
}
