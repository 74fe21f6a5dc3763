//go:build !windows

package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// Player plays speech clips through an ffplay child process. Pause and
// resume are implemented with job-control signals, so the child keeps its
// position. ffplay has no live volume control; a volume change during
// playback restarts the child at the current position with the new level.
type Player struct {
	mu          sync.Mutex
	cmd         *exec.Cmd
	tmpPath     string
	total       time.Duration
	startedAt   time.Time
	accumulated time.Duration
	playing     bool
	paused      bool
	volume      float64
}

// NewPlayer creates an idle player.
func NewPlayer() *Player {
	return &Player{volume: 1}
}

// playArgs builds the ffplay argument list for the clip at the given volume,
// seeking past offset when resuming mid-clip.
func playArgs(path string, volume float64, offset time.Duration) []string {
	args := []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "quiet",
		"-volume", strconv.Itoa(int(volume * 100)),
	}
	if offset > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", offset.Seconds()))
	}
	return append(args, path)
}

func (p *Player) Play(clip *media.AudioClip) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	path := filepath.Join(os.TempDir(), fmt.Sprintf("speech-%d.wav", time.Now().UnixNano()))
	if err := media.WriteWAVFile(path, clip); err != nil {
		return err
	}
	p.tmpPath = path
	p.total = clip.Duration()

	if err := p.startLocked(0); err != nil {
		os.Remove(path)
		p.tmpPath = ""
		return err
	}
	return nil
}

// startLocked launches an ffplay child at the given clip offset.
func (p *Player) startLocked(offset time.Duration) error {
	cmd := exec.Command("ffplay", playArgs(p.tmpPath, p.volume, offset)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffplay: %w", err)
	}
	p.cmd = cmd
	p.startedAt = time.Now()
	p.accumulated = offset
	p.playing = true
	p.paused = false

	go func() {
		cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.playing = false
		}
		p.mu.Unlock()
	}()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused || p.cmd == nil {
		return
	}
	p.cmd.Process.Signal(syscall.SIGSTOP)
	p.accumulated += time.Since(p.startedAt)
	p.paused = true
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || !p.paused || p.cmd == nil {
		return
	}
	p.cmd.Process.Signal(syscall.SIGCONT)
	p.startedAt = time.Now()
	p.paused = false
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// killLocked terminates the child process without touching the temp file or
// the position bookkeeping.
func (p *Player) killLocked() {
	if p.cmd == nil {
		return
	}
	// A stopped child ignores SIGKILL until it runs again.
	p.cmd.Process.Signal(syscall.SIGCONT)
	p.cmd.Process.Kill()
	p.cmd = nil
}

func (p *Player) stopLocked() {
	p.killLocked()
	if p.tmpPath != "" {
		os.Remove(p.tmpPath)
		p.tmpPath = ""
	}
	p.playing = false
	p.paused = false
	p.accumulated = 0
}

// SetVolume applies immediately. Mid-playback the child is restarted at the
// current position; a paused child comes back stopped at the same spot.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v == p.volume {
		return
	}
	p.volume = v
	if !p.playing || p.cmd == nil {
		return
	}

	pos := p.positionLocked()
	paused := p.paused
	p.killLocked()
	if err := p.startLocked(pos); err != nil {
		p.playing = false
		return
	}
	if paused {
		p.cmd.Process.Signal(syscall.SIGSTOP)
		p.accumulated = pos
		p.paused = true
	}
}

func (p *Player) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	pos := p.accumulated
	if p.playing && !p.paused {
		pos += time.Since(p.startedAt)
	}
	if pos > p.total {
		return p.total
	}
	return pos
}
