// Package ffmpeg provides the local media collaborators as thin wrappers
// around the ffmpeg toolchain: a raw-frame video decoder, a speech player,
// and a microphone recorder. Each runs the external binary as a child
// process and talks to it over pipes.
package ffmpeg

import (
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/playback"
)

// Decoder streams square RGBA frames from a video file via an ffmpeg child
// process writing rawvideo to a pipe.
type Decoder struct {
	path string
	size int
	fps  float64

	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// Opener opens Decoders for the playback controller.
type Opener struct{}

// NewOpener creates a decoder opener.
func NewOpener() *Opener {
	return &Opener{}
}

func (o *Opener) Open(clip *media.VideoClip, size int) (playback.FrameDecoder, error) {
	return OpenDecoder(clip, size)
}

// OpenDecoder probes the clip's frame rate and starts the decode process.
func OpenDecoder(clip *media.VideoClip, size int) (*Decoder, error) {
	fps := clip.FPS
	if fps <= 0 {
		fps = probeFPS(clip.Path)
	}
	d := &Decoder{path: clip.Path, size: size, fps: fps}
	if err := d.start(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decoder) start() error {
	dims := fmt.Sprintf("%dx%d", d.size, d.size)
	cmd := exec.Command("ffmpeg",
		"-i", d.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", dims,
		"-loglevel", "quiet",
		"-")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	d.cmd = cmd
	d.stdout = stdout
	return nil
}

func (d *Decoder) stop() {
	if d.cmd == nil {
		return
	}
	d.stdout.Close()
	d.cmd.Process.Kill()
	d.cmd.Wait()
	d.cmd = nil
	d.stdout = nil
}

// Next returns the following frame, or io.EOF at end of stream.
func (d *Decoder) Next() (image.Image, error) {
	if d.cmd == nil {
		return nil, io.EOF
	}
	frame := image.NewRGBA(image.Rect(0, 0, d.size, d.size))
	if _, err := io.ReadFull(d.stdout, frame.Pix); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return frame, nil
}

// Rewind restarts the decode process from frame zero.
func (d *Decoder) Rewind() error {
	d.stop()
	return d.start()
}

// FPS returns the probed frame rate.
func (d *Decoder) FPS() float64 {
	return d.fps
}

// Close terminates the decode process.
func (d *Decoder) Close() error {
	d.stop()
	return nil
}

// probeFPS asks ffprobe for the stream's average frame rate, falling back
// to the stock rate when the probe fails.
func probeFPS(path string) float64 {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate",
		"-of", "default=nw=1:nk=1",
		path).Output()
	if err != nil {
		return media.DefaultFPS
	}
	return parseFrameRate(strings.TrimSpace(string(out)))
}

// parseFrameRate handles ffprobe's "num/den" rational notation.
func parseFrameRate(raw string) float64 {
	if raw == "" || raw == "0/0" {
		return media.DefaultFPS
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 || n <= 0 {
			return media.DefaultFPS
		}
		return n / d
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return media.DefaultFPS
	}
	return v
}
