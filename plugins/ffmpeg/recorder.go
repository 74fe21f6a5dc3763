package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// Recorder captures microphone audio to a temporary WAV via an ffmpeg
// child process. Stop interrupts the child so it finalizes the file, then
// reads the capture back.
type Recorder struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	path string
}

// NewRecorder creates an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// captureArgs returns the platform's default capture device arguments.
func captureArgs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"-f", "avfoundation", "-i", ":0"}
	default:
		return []string{"-f", "alsa", "-i", "default"}
	}
}

func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return fmt.Errorf("capture already in progress")
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("recording-%d.wav", time.Now().UnixNano()))
	args := append(captureArgs(),
		"-ac", "1",
		"-ar", "16000",
		"-loglevel", "quiet",
		"-y", path)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open microphone: %w", err)
	}
	r.cmd = cmd
	r.path = path
	return nil
}

func (r *Recorder) Stop() (*media.AudioClip, error) {
	r.mu.Lock()
	cmd := r.cmd
	path := r.path
	r.cmd = nil
	r.path = ""
	r.mu.Unlock()

	if cmd == nil {
		return nil, fmt.Errorf("no capture in progress")
	}
	// Interrupt lets ffmpeg write the WAV header before exiting.
	cmd.Process.Signal(os.Interrupt)
	cmd.Wait()
	defer os.Remove(path)

	clip, err := media.ReadWAVFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return clip, nil
}
