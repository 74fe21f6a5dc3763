package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/chriscow/talking-history-go/pkg/ai"
	imagefake "github.com/chriscow/talking-history-go/pkg/ai/imagegen/fake"
	llmfake "github.com/chriscow/talking-history-go/pkg/ai/llm/fake"
	"github.com/chriscow/talking-history-go/pkg/ai/stt"
	sttfake "github.com/chriscow/talking-history-go/pkg/ai/stt/fake"
	ttsfake "github.com/chriscow/talking-history-go/pkg/ai/tts/fake"
	videofake "github.com/chriscow/talking-history-go/pkg/ai/videogen/fake"
	"github.com/chriscow/talking-history-go/pkg/fetch"
	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/pipeline"
)

// fastRetry keeps attempt budgets realistic but removes every wait so the
// tests run instantly.
var fastRetry = ai.RetryConfig{MaxAttempts: 3}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testFetcher(t *testing.T) fetch.Fetcher {
	img := pngBytes(t)
	return fetch.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		if strings.HasSuffix(url, ".mp4") {
			return []byte("fake mp4 payload"), nil
		}
		return img, nil
	})
}

func baseConfig(t *testing.T) pipeline.Config {
	return pipeline.Config{
		Transcriber: sttfake.NewFakeTranscriber("tell me about ada lovelace"),
		Composer:    llmfake.NewFakeGenerator(`{"character_name": "Ada Lovelace", "gender": "female", "monologue": "I am Ada."}`),
		Illustrator: imagefake.NewFakeImageGenerator(),
		Synthesizer: ttsfake.NewFakeSynthesizer(time.Second),
		Fetcher:     testFetcher(t),
		Retry:       fastRetry,
		ArtifactDir: t.TempDir(),
	}
}

// collect drains the run's event stream to completion and returns every
// event in order.
func collect(t *testing.T, run *pipeline.Run) []pipeline.Event {
	t.Helper()
	var events []pipeline.Event
	timeout := time.After(30 * time.Second)
	for {
		select {
		case ev, ok := <-run.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("run did not finish in time")
		}
	}
}

func terminal(t *testing.T, events []pipeline.Event) pipeline.Event {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no events posted")
	}
	last := events[len(events)-1]
	if !last.Status.Terminal() {
		t.Fatalf("last event is not terminal: %v", last.Status)
	}
	return last
}

func TestRunHappyPath(t *testing.T) {
	is := is.New(t)

	runner, err := pipeline.New(baseConfig(t))
	is.NoErr(err)
	is.True(!runner.VideoCapable())

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	events := collect(t, run)
	last := terminal(t, events)

	is.Equal(last.Type, pipeline.EventReady)
	is.True(last.Bundle.Complete())
	is.Equal(last.Bundle.SubjectName, "Ada Lovelace")
	is.Equal(last.Bundle.SubjectGender, pipeline.GenderFemale)
	is.Equal(last.Bundle.Transcript, "tell me about ada lovelace")
	is.True(strings.HasSuffix(last.Bundle.MonologueText, " Thank you."))
	is.Equal(last.Bundle.Video, (*media.VideoClip)(nil))

	// Portraits come back resized to the square canvas.
	is.Equal(len(last.Bundle.Portraits), 1)
	bounds := last.Bundle.Portraits[0].Bounds()
	is.Equal(bounds.Dx(), pipeline.DefaultCanvasSize)
	is.Equal(bounds.Dy(), pipeline.DefaultCanvasSize)

	// Statuses never move backwards.
	prev := pipeline.StatusRecording
	for _, ev := range events {
		if ev.Status < prev {
			t.Fatalf("status went backwards: %v after %v", ev.Status, prev)
		}
		prev = ev.Status
	}
}

func TestRunVideoVariant(t *testing.T) {
	is := is.New(t)

	animator := videofake.NewFakeVideoGenerator("")
	cfg := baseConfig(t)
	cfg.Animator = animator
	cfg.Synthesizer = ttsfake.NewFakeSynthesizer(5 * time.Second)
	cfg.AudioCap = 2 * time.Second

	runner, err := pipeline.New(cfg)
	is.NoErr(err)
	is.True(runner.VideoCapable())

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	events := collect(t, run)
	last := terminal(t, events)

	is.Equal(last.Type, pipeline.EventReady)
	is.True(last.Bundle.Video != nil)
	is.True(strings.HasSuffix(last.Bundle.Video.Path, ".mp4"))
	is.Equal(animator.Calls(), 1)

	// The animator receives the generated portrait as its source frame and
	// the already-capped speech clip to lip-sync against.
	is.True(animator.LastRequest().SourceImage != nil)
	is.True(animator.LastRequest().Audio != nil)
	is.Equal(animator.LastRequest().Audio.Duration(), 2*time.Second)

	// Speech longer than the cap is truncated, never rejected.
	is.Equal(last.Bundle.Speech.Duration(), 2*time.Second)

	// Synthesis must come before animation so the clip exists to drive it.
	sawSynthesizing := false
	sawAnimating := false
	for _, ev := range events {
		switch ev.Status {
		case pipeline.StatusSynthesizing:
			is.True(!sawAnimating)
			sawSynthesizing = true
		case pipeline.StatusAnimating:
			is.True(sawSynthesizing)
			sawAnimating = true
		}
	}
	is.True(sawAnimating)
}

func TestRunNoTruncationWithoutAnimator(t *testing.T) {
	is := is.New(t)

	cfg := baseConfig(t)
	cfg.Synthesizer = ttsfake.NewFakeSynthesizer(5 * time.Second)
	cfg.AudioCap = 2 * time.Second

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	last := terminal(t, collect(t, run))

	is.Equal(last.Type, pipeline.EventReady)
	is.Equal(last.Bundle.Speech.Duration(), 5*time.Second)
}

func TestRunExhaustsRetryBudget(t *testing.T) {
	is := is.New(t)

	boom := errors.New("backend exploded")
	transcriber := sttfake.NewFakeTranscriber("").FailFirst(boom, boom, boom)
	cfg := baseConfig(t)
	cfg.Transcriber = transcriber

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	last := terminal(t, collect(t, run))

	is.Equal(last.Type, pipeline.EventFailed)
	is.True(errors.Is(last.Err, ai.ErrExhaustedRetries))
	is.Equal(transcriber.Calls(), 3)
	is.True(strings.HasPrefix(last.Cause, "Error: "))
	is.True(len(last.Cause) <= len("Error: ")+60)
}

func TestRunFatalErrorSkipsRetry(t *testing.T) {
	is := is.New(t)

	transcriber := sttfake.NewFakeTranscriber("").
		FailFirst(ai.NewFatalError(errors.New("bad key"), "invalid API token"))
	cfg := baseConfig(t)
	cfg.Transcriber = transcriber

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	last := terminal(t, collect(t, run))

	is.Equal(last.Type, pipeline.EventFailed)
	is.Equal(transcriber.Calls(), 1)
}

func TestRunRateLimitThenRecover(t *testing.T) {
	is := is.New(t)

	composer := llmfake.NewFakeGenerator(`{"character_name": "Ada Lovelace", "gender": "female", "monologue": "I am Ada."}`).
		FailFirst(
			errors.New("request throttled; resets in ~0s"),
			errors.New("request throttled; resets in ~0s"),
		)
	cfg := baseConfig(t)
	cfg.Composer = composer

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	events := collect(t, run)
	last := terminal(t, events)

	is.Equal(last.Type, pipeline.EventReady)
	is.Equal(composer.Calls(), 3)

	sawRateLimitLabel := false
	for _, ev := range events {
		if strings.Contains(ev.Label, "Rate limited") {
			sawRateLimitLabel = true
		}
	}
	is.True(sawRateLimitLabel)
}

func TestRunMalformedCompositionFailsImmediately(t *testing.T) {
	is := is.New(t)

	composer := llmfake.NewFakeGenerator("I refuse to answer in JSON.")
	cfg := baseConfig(t)
	cfg.Composer = composer

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	last := terminal(t, collect(t, run))

	is.Equal(last.Type, pipeline.EventFailed)
	is.True(errors.Is(last.Err, pipeline.ErrMalformedResponse))

	// The call itself succeeded; parsing failed. No retries are spent on a
	// payload the model already delivered.
	is.Equal(composer.Calls(), 1)
}

func TestRunGenderFallback(t *testing.T) {
	is := is.New(t)

	synth := ttsfake.NewFakeSynthesizer(time.Second)
	cfg := baseConfig(t)
	cfg.Composer = llmfake.NewFakeGenerator(`{"character_name": "Mystery Figure", "monologue": "Guess who."}`)
	cfg.Synthesizer = synth
	cfg.Voices = pipeline.VoiceMap{
		Male:          "default-male.wav",
		Female:        "female.wav",
		DefaultGender: pipeline.GenderMale,
	}

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	last := terminal(t, collect(t, run))

	is.Equal(last.Type, pipeline.EventReady)
	is.Equal(last.Bundle.SubjectGender, pipeline.GenderMale)
	is.Equal(synth.LastRequest().VoiceReference, "default-male.wav")
}

func TestRunEmptyTranscriptStillComposes(t *testing.T) {
	is := is.New(t)

	composer := llmfake.NewFakeGenerator(`{"character_name": "Fake Figure", "gender": "male", "monologue": "Silence speaks."}`)
	cfg := baseConfig(t)
	cfg.Transcriber = sttfake.NewFakeTranscriber(" ")
	cfg.Composer = composer

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	last := terminal(t, collect(t, run))

	is.Equal(last.Type, pipeline.EventReady)
	is.Equal(composer.Calls(), 1)
}

func TestAbandonedRunGoesSilent(t *testing.T) {
	is := is.New(t)

	blocked := make(chan struct{})
	cfg := baseConfig(t)
	cfg.Transcriber = stt.TranscriberFunc(func(ctx context.Context, clip *media.AudioClip) (string, error) {
		close(blocked)
		<-ctx.Done()
		return "", ctx.Err()
	})

	runner, err := pipeline.New(cfg)
	is.NoErr(err)

	run := runner.Start(context.Background(), ttsfake.SineClip(time.Second))
	<-blocked
	run.Abandon()

	events := collect(t, run)
	for _, ev := range events {
		if ev.Status.Terminal() {
			t.Fatalf("abandoned run posted terminal event: %+v", ev)
		}
	}
}
