// Command talking-history is the console front end for the generative
// pipeline. `run` starts an interactive record/playback session on the
// local microphone and speakers; `pipeline run` executes a single headless
// run from a WAV file; `providers list` shows the registered plugins.
package main

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chriscow/talking-history-go/internal/config"
	"github.com/chriscow/talking-history-go/pkg/ai"
	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/pipeline"
	"github.com/chriscow/talking-history-go/pkg/playback"
	"github.com/chriscow/talking-history-go/pkg/session"
	"github.com/chriscow/talking-history-go/pkg/version"
	"github.com/chriscow/talking-history-go/plugins"
	"github.com/chriscow/talking-history-go/plugins/ffmpeg"
	"github.com/chriscow/talking-history-go/plugins/openai"
	"github.com/chriscow/talking-history-go/plugins/replicate"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "talking-history",
	Short: "Talk to History - speak a question, hear a historical figure answer",
	Long: `talking-history turns a spoken question into a first-person monologue:
it transcribes the recording, identifies the historical figure, paints a
portrait, optionally animates it, and synthesizes the answer in a
period-appropriate voice.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Interactive session on the local microphone and speakers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := setupLogger(cfg)

		if err := registerProviders(cfg); err != nil {
			return err
		}
		runner, err := buildRunner(cfg, logger)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runInteractive(ctx, cfg, runner, logger)
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Pipeline commands",
}

var pipelineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline run from a WAV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		outDir, _ := cmd.Flags().GetString("out")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := setupLogger(cfg)

		if err := registerProviders(cfg); err != nil {
			return err
		}
		if outDir != "" {
			cfg.Pipeline.ArtifactDir = outDir
		}
		runner, err := buildRunner(cfg, logger)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runHeadless(ctx, cfg, runner, input, logger)
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Provider management commands",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered provider plugins and their services",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := registerProviders(cfg); err != nil {
			return err
		}
		registry := plugins.GlobalRegistry()

		fmt.Printf("%-12s %-8s %s\n", "PLUGIN", "VERSION", "DESCRIPTION")
		fmt.Println("--------------------------------------------------------------")
		for _, p := range registry.Plugins() {
			fmt.Printf("%-12s %-8s %s\n", p.Name(), p.Version(), p.Description())
		}
		fmt.Println()
		fmt.Printf("%-14s %s\n", "transcribers:", strings.Join(registry.ListTranscribers(), ", "))
		fmt.Printf("%-14s %s\n", "composers:", strings.Join(registry.ListComposers(), ", "))
		fmt.Printf("%-14s %s\n", "illustrators:", strings.Join(registry.ListIllustrators(), ", "))
		fmt.Printf("%-14s %s\n", "animators:", strings.Join(registry.ListAnimators(), ", "))
		fmt.Printf("%-14s %s\n", "synthesizers:", strings.Join(registry.ListSynthesizers(), ", "))
		return nil
	},
}

func setupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{}
	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if os.Getenv("TH_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// registerProviders installs the plugins whose credentials are present.
func registerProviders(cfg config.Config) error {
	if cfg.Providers.ReplicateToken != "" {
		if err := replicate.RegisterPlugin(cfg.Providers.ReplicateToken); err != nil {
			return fmt.Errorf("register replicate plugin: %w", err)
		}
	}
	if cfg.Providers.OpenAIKey != "" {
		if err := openai.RegisterPlugin(cfg.Providers.OpenAIKey); err != nil {
			return fmt.Errorf("register openai plugin: %w", err)
		}
	}
	if cfg.Providers.ReplicateToken == "" && cfg.Providers.OpenAIKey == "" {
		return fmt.Errorf("no provider credentials: set REPLICATE_API_TOKEN or OPENAI_API_KEY")
	}
	return nil
}

// buildRunner assembles the pipeline from the configured provider names.
func buildRunner(cfg config.Config, logger *slog.Logger) (*pipeline.Runner, error) {
	registry := plugins.GlobalRegistry()

	transcriber, err := registry.CreateTranscriber(cfg.Providers.Transcriber)
	if err != nil {
		return nil, err
	}
	composer, err := registry.CreateComposer(cfg.Providers.Composer)
	if err != nil {
		return nil, err
	}
	illustrator, err := registry.CreateIllustrator(cfg.Providers.Illustrator)
	if err != nil {
		return nil, err
	}
	synthesizer, err := registry.CreateSynthesizer(cfg.Providers.Synthesizer)
	if err != nil {
		return nil, err
	}

	pc := pipeline.Config{
		Transcriber: transcriber,
		Composer:    composer,
		Illustrator: illustrator,
		Synthesizer: synthesizer,
		Voices:      voicesFromConfig(cfg.Voices),
		Retry:       retryFromConfig(cfg.Pipeline.Retry),
		CanvasSize:  cfg.Pipeline.CanvasSize,
		AudioCap:    cfg.Pipeline.AudioCap(),
		ArtifactDir: cfg.Pipeline.ArtifactDir,
		Logger:      logger,
	}
	if cfg.Providers.Animator != "" {
		animator, err := registry.CreateAnimator(cfg.Providers.Animator)
		if err != nil {
			return nil, err
		}
		pc.Animator = animator
	}
	return pipeline.New(pc)
}

func voicesFromConfig(vc config.VoicesConfig) pipeline.VoiceMap {
	voices := pipeline.DefaultVoices()
	if vc.Male != "" {
		voices.Male = vc.Male
	}
	if vc.Female != "" {
		voices.Female = vc.Female
	}
	if vc.DefaultGender == "female" {
		voices.DefaultGender = pipeline.GenderFemale
	}
	return voices
}

func retryFromConfig(rc config.RetryConfig) ai.RetryConfig {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return ai.RetryConfig{
		MaxAttempts:   rc.MaxAttempts,
		BaseWait:      ms(rc.BaseWaitMS),
		JitterSpan:    ms(rc.JitterSpanMS),
		RateLimitWait: ms(rc.RateLimitWaitMS),
		SafetyMargin:  ms(rc.SafetyMarginMS),
		FailureWait:   ms(rc.FailureWaitMS),
	}
}

// consoleUI renders session chrome as status lines on stdout.
type consoleUI struct{}

func (consoleUI) SetStatus(text string) {
	fmt.Printf("\r\033[K%s\n", text)
}

func (consoleUI) SetControls(state session.ControlState) {}

// consoleDisplay drops frames; the console session is audio only. Portraits
// and video artifacts stay on disk for inspection.
type consoleDisplay struct{}

func (consoleDisplay) ShowFrame(img image.Image) {}
func (consoleDisplay) ShowIdle()                 {}

func runInteractive(ctx context.Context, cfg config.Config, runner *pipeline.Runner, logger *slog.Logger) error {
	// The controller needs the mode hook before the session exists.
	var sessRef atomic.Pointer[session.Session]

	controller, err := playback.NewController(playback.Config{
		Player:     ffmpeg.NewPlayer(),
		Display:    consoleDisplay{},
		Opener:     ffmpeg.NewOpener(),
		CanvasSize: cfg.Pipeline.CanvasSize,
		Logger:     logger,
		OnModeChange: func(m playback.Mode) {
			if s := sessRef.Load(); s != nil {
				s.OnPlaybackMode(m)
			}
		},
	})
	if err != nil {
		return err
	}
	controller.SetVolume(cfg.Playback.Volume)

	sess, err := session.New(session.Config{
		Runner:     runner,
		Controller: controller,
		Recorder:   ffmpeg.NewRecorder(),
		UI:         consoleUI{},
		Logger:     logger,
	})
	if err != nil {
		controller.Close()
		return err
	}
	sessRef.Store(sess)
	defer sess.Close()

	fmt.Println("Commands: r=record/stop  p=pause  c=continue  s=stop  a=replay  v <0-1>=volume  q=quit")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "r":
				sess.ToggleRecord(ctx)
			case "p":
				sess.Pause()
			case "c":
				sess.Resume()
			case "s":
				sess.Stop()
			case "a":
				sess.Replay()
			case "v":
				if len(fields) < 2 {
					fmt.Println("usage: v <0-1>")
					continue
				}
				vol, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					fmt.Println("usage: v <0-1>")
					continue
				}
				sess.SetVolume(vol)
			case "q":
				return nil
			default:
				fmt.Printf("unknown command %q\n", fields[0])
			}
		}
	}
}

func runHeadless(ctx context.Context, cfg config.Config, runner *pipeline.Runner, input string, logger *slog.Logger) error {
	clip, err := media.ReadWAVFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Info("starting pipeline run",
		slog.String("input", input),
		slog.Duration("recording", clip.Duration()),
		slog.Bool("video", runner.VideoCapable()))

	run := runner.Start(ctx, clip)
	for ev := range run.Events() {
		switch ev.Type {
		case pipeline.EventProgress:
			fmt.Println(ev.Label)
		case pipeline.EventFailed:
			return fmt.Errorf("pipeline failed: %w", ev.Err)
		case pipeline.EventReady:
			return reportBundle(cfg, run.ID, ev.Bundle)
		}
	}
	return ctx.Err()
}

// reportBundle prints the run summary and writes the portrait next to the
// speech and video artifacts the runner already saved.
func reportBundle(cfg config.Config, runID string, b *pipeline.Bundle) error {
	portraitPath := filepath.Join(cfg.Pipeline.ArtifactDir, runID+"-portrait.png")
	f, err := os.Create(portraitPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, b.Portraits[0]); err != nil {
		return err
	}

	fmt.Printf("Figure:    %s (%s)\n", b.SubjectName, b.SubjectGender)
	fmt.Printf("Monologue: %s\n", b.MonologueText)
	fmt.Printf("Speech:    %s (%s)\n",
		filepath.Join(cfg.Pipeline.ArtifactDir, runID+"-speech.wav"),
		b.Speech.Duration().Round(time.Millisecond))
	fmt.Printf("Portrait:  %s\n", portraitPath)
	if b.Video != nil {
		fmt.Printf("Video:     %s\n", b.Video.Path)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	pipelineRunCmd.Flags().String("input", "", "Path to a WAV recording of the question")
	pipelineRunCmd.Flags().String("out", "", "Artifact output directory (default: config artifact_dir)")
	pipelineRunCmd.MarkFlagRequired("input")

	pipelineCmd.AddCommand(pipelineRunCmd)
	providersCmd.AddCommand(providersListCmd)
	rootCmd.AddCommand(versionCmd, runCmd, pipelineCmd, providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
