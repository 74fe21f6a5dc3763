package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/chriscow/talking-history-go/pkg/ai"
	"github.com/chriscow/talking-history-go/pkg/ai/imagegen"
	"github.com/chriscow/talking-history-go/pkg/ai/llm"
	"github.com/chriscow/talking-history-go/pkg/ai/stt"
	"github.com/chriscow/talking-history-go/pkg/ai/tts"
	"github.com/chriscow/talking-history-go/pkg/ai/videogen"
	"github.com/chriscow/talking-history-go/pkg/fetch"
	"github.com/chriscow/talking-history-go/pkg/media"
)

const (
	// DefaultCanvasSize is the square portrait resolution in pixels.
	DefaultCanvasSize = 512

	// DefaultAudioCap bounds the speech clip in video-capable variants; the
	// image-to-video service rejects longer audio.
	DefaultAudioCap = 29 * time.Second

	// causeLimit bounds the user-visible failure cause.
	causeLimit = 60
)

// Config holds the capabilities and tuning for a Runner.
type Config struct {
	Transcriber stt.Transcriber
	Composer    llm.TextGenerator
	Illustrator imagegen.ImageGenerator
	Synthesizer tts.SpeechSynthesizer

	// Animator is optional. When nil the Animating stage is skipped and
	// playback uses the still portrait.
	Animator videogen.VideoGenerator

	// Fetcher materializes artifacts from delivery URLs. Defaults to an
	// HTTP fetcher.
	Fetcher fetch.Fetcher

	Voices      VoiceMap
	Retry       ai.RetryConfig
	CanvasSize  int
	AudioCap    time.Duration
	ArtifactDir string
	Logger      *slog.Logger
}

// Runner executes pipeline runs. It is safe to reuse across runs, but the
// session layer guarantees at most one run is in flight at a time.
type Runner struct {
	cfg Config
}

// New creates a Runner with the given configuration.
func New(cfg Config) (*Runner, error) {
	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if cfg.Composer == nil {
		return nil, fmt.Errorf("composer is required")
	}
	if cfg.Illustrator == nil {
		return nil, fmt.Errorf("illustrator is required")
	}
	if cfg.Synthesizer == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = fetch.NewHTTPFetcher()
	}
	if cfg.Voices.Male == "" && cfg.Voices.Female == "" {
		cfg.Voices = DefaultVoices()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = ai.DefaultRetryConfig
	}
	if cfg.CanvasSize <= 0 {
		cfg.CanvasSize = DefaultCanvasSize
	}
	if cfg.AudioCap <= 0 {
		cfg.AudioCap = DefaultAudioCap
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = os.TempDir()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{cfg: cfg}, nil
}

// VideoCapable reports whether runs will include the Animating stage.
func (r *Runner) VideoCapable() bool {
	return r.cfg.Animator != nil
}

// Run is one in-flight pipeline execution. It owns the bundle until the
// Ready event transfers it to playback, and is destroyed when a new
// recording starts or the run fails.
type Run struct {
	ID     string
	events chan Event
	cancel context.CancelFunc
	alive  atomic.Bool
}

// Events returns the ordered event stream for this run. The channel closes
// after a terminal event, or silently if the run was abandoned.
func (run *Run) Events() <-chan Event {
	return run.events
}

// Abandon marks the run dead. The background worker notices via the
// liveness flag and exits without posting a result.
func (run *Run) Abandon() {
	if run.alive.CompareAndSwap(true, false) {
		run.cancel()
	}
}

// Start launches a run on its own background goroutine. The worker may
// block on network calls for minutes; it communicates exclusively through
// the event channel.
func (r *Runner) Start(ctx context.Context, recording *media.AudioClip) *Run {
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		ID:     uuid.NewString(),
		events: make(chan Event, 16),
		cancel: cancel,
	}
	run.alive.Store(true)
	go r.process(runCtx, run, recording)
	return run
}

func (r *Runner) process(ctx context.Context, run *Run, recording *media.AudioClip) {
	defer close(run.events)
	defer run.cancel()

	total := 4
	if r.cfg.Animator != nil {
		total = 5
	}
	bundle := &Bundle{}
	log := r.cfg.Logger.With(slog.String("run_id", run.ID))

	// Stage 1: Transcribe. Empty text is a success; the composition stage
	// receives whatever came back.
	r.progress(run, StatusTranscribing, fmt.Sprintf("Processing... (1/%d Transcribing)", total))
	transcript, err := ai.Invoke(ctx, r.cfg.Retry, "Transcription",
		r.notify(run, StatusTranscribing),
		func(ctx context.Context) (string, error) {
			return r.cfg.Transcriber.Transcribe(ctx, recording)
		})
	if err != nil {
		r.fail(ctx, run, log, err)
		return
	}
	bundle.Transcript = transcript
	log.Info("transcription complete", slog.String("text", transcript))

	// Stage 2: Compose.
	r.progress(run, StatusComposing, fmt.Sprintf("Processing... (2/%d Researching Figure)", total))
	raw, err := ai.Invoke(ctx, r.cfg.Retry, "Composition",
		r.notify(run, StatusComposing),
		func(ctx context.Context) (string, error) {
			return r.cfg.Composer.Generate(ctx, bundle.Transcript, systemInstructions)
		})
	if err != nil {
		r.fail(ctx, run, log, err)
		return
	}
	comp, err := ParseComposition(raw)
	if err != nil {
		r.fail(ctx, run, log, err)
		return
	}
	gender, voiceRef := r.cfg.Voices.Resolve(comp.Gender)
	bundle.SubjectName = comp.CharacterName
	bundle.SubjectGender = gender
	bundle.MonologueText = strings.TrimSpace(comp.Monologue) + " Thank you."
	log.Info("composition complete",
		slog.String("figure", bundle.SubjectName),
		slog.String("gender", gender.String()))

	// Stage 3: Illustrate.
	r.progress(run, StatusIllustrating, fmt.Sprintf("Processing... (3/%d Painting %s)", total, bundle.SubjectName))
	urls, err := ai.Invoke(ctx, r.cfg.Retry, "Image Generation",
		r.notify(run, StatusIllustrating),
		func(ctx context.Context) ([]string, error) {
			return r.cfg.Illustrator.Generate(ctx, imagegen.Request{
				Prompt:      portraitPrompt(bundle.SubjectName),
				AspectRatio: "1:1",
				NumOutputs:  1,
			})
		})
	if err != nil {
		r.fail(ctx, run, log, err)
		return
	}
	if len(urls) == 0 {
		r.fail(ctx, run, log, fmt.Errorf("image generation returned no outputs"))
		return
	}
	for _, url := range urls {
		data, err := r.cfg.Fetcher.Fetch(ctx, url)
		if err != nil {
			r.fail(ctx, run, log, fmt.Errorf("fetch portrait: %w", err))
			return
		}
		img, err := media.DecodeImage(data)
		if err != nil {
			r.fail(ctx, run, log, err)
			return
		}
		bundle.Portraits = append(bundle.Portraits, media.ResizeSquare(img, r.cfg.CanvasSize))
	}

	// Stage 4: Synthesize. The speech clip must exist before the animation
	// stage, which lip-syncs the video to it.
	r.progress(run, StatusSynthesizing,
		fmt.Sprintf("Processing... (4/%d Synthesizing %s voice)", total, gender))
	speech, err := ai.Invoke(ctx, r.cfg.Retry, "Voice Synthesis",
		r.notify(run, StatusSynthesizing),
		func(ctx context.Context) ([]byte, error) {
			return r.cfg.Synthesizer.Synthesize(ctx, tts.Request{
				Text:           bundle.MonologueText,
				Language:       "en",
				VoiceReference: voiceRef,
			})
		})
	if err != nil {
		r.fail(ctx, run, log, err)
		return
	}
	clip, err := media.DecodeWAV(speech)
	if err != nil {
		r.fail(ctx, run, log, fmt.Errorf("decode synthesized audio: %w", err))
		return
	}
	// Only video-capable variants require a bounded clip.
	if r.cfg.Animator != nil && clip.Duration() > r.cfg.AudioCap {
		log.Info("truncating speech to cap",
			slog.Duration("from", clip.Duration()),
			slog.Duration("cap", r.cfg.AudioCap))
		clip.Truncate(r.cfg.AudioCap)
	}
	bundle.Speech = clip

	speechPath := filepath.Join(r.cfg.ArtifactDir, run.ID+"-speech.wav")
	if err := media.WriteWAVFile(speechPath, clip); err != nil {
		r.fail(ctx, run, log, err)
		return
	}

	// Final stage (video-capable variants only): Animate, driven by the
	// capped speech clip.
	if r.cfg.Animator != nil {
		r.progress(run, StatusAnimating, fmt.Sprintf("Processing... (%d/%d Creating talking video)", total, total))
		videoURL, err := ai.Invoke(ctx, r.cfg.Retry, "Image-to-Video Generation",
			r.notify(run, StatusAnimating),
			func(ctx context.Context) (string, error) {
				return r.cfg.Animator.Generate(ctx, videogen.Request{
					SourceImage: bundle.Portraits[0],
					Audio:       bundle.Speech,
					Prompt:      animationPrompt(bundle.SubjectName),
				})
			})
		if err != nil {
			r.fail(ctx, run, log, err)
			return
		}
		data, err := r.cfg.Fetcher.Fetch(ctx, videoURL)
		if err != nil {
			r.fail(ctx, run, log, fmt.Errorf("fetch video: %w", err))
			return
		}
		path := filepath.Join(r.cfg.ArtifactDir, run.ID+"-video.mp4")
		if err := os.WriteFile(path, data, 0644); err != nil {
			r.fail(ctx, run, log, fmt.Errorf("write video artifact: %w", err))
			return
		}
		bundle.Video = &media.VideoClip{Path: path}
		log.Info("animation complete", slog.String("path", path))
	}

	if !run.alive.Load() || ctx.Err() != nil {
		log.Debug("run abandoned before publish")
		return
	}
	log.Info("pipeline ready",
		slog.String("figure", bundle.SubjectName),
		slog.Duration("speech", clip.Duration()),
		slog.Bool("video", bundle.Video != nil))
	run.events <- Event{Type: EventReady, Status: StatusReady, Bundle: bundle}
}

// progress posts a status transition. Progress events are droppable: if the
// consumer lags the label is stale anyway.
func (r *Runner) progress(run *Run, status RunStatus, label string) {
	if !run.alive.Load() {
		return
	}
	select {
	case run.events <- Event{Type: EventProgress, Status: status, Label: label}:
	default:
	}
}

// notify adapts progress posting to the retry invoker's callback.
func (r *Runner) notify(run *Run, status RunStatus) ai.ProgressFunc {
	return func(label string) {
		r.progress(run, status, label)
	}
}

// fail converts a stage error into the terminal Failed event. Abandoned or
// cancelled runs exit silently instead.
func (r *Runner) fail(ctx context.Context, run *Run, log *slog.Logger, err error) {
	if ctx.Err() != nil || !run.alive.Load() {
		log.Debug("run cancelled", slog.String("error", err.Error()))
		return
	}
	log.Error("pipeline failed", slog.String("error", err.Error()))
	cause := err.Error()
	if len(cause) > causeLimit {
		cause = cause[:causeLimit]
	}
	run.events <- Event{
		Type:   EventFailed,
		Status: StatusFailed,
		Cause:  "Error: " + cause,
		Err:    err,
	}
}

func portraitPrompt(name string) string {
	return fmt.Sprintf("A cinematic portrait of %s, hyperrealistic, 8K quality, "+
		"facing directly at camera, neutral expression, front-facing, "+
		"dramatic lighting, historical period-accurate clothing, "+
		"professional studio photograph, clean background", name)
}

func animationPrompt(name string) string {
	return fmt.Sprintf("A realistic talking portrait of %s, "+
		"accurate lip-sync to the given audio, cinematic framing.", name)
}
