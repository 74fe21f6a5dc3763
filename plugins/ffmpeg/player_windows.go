//go:build windows

package ffmpeg

import (
	"fmt"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// Player is unavailable on Windows: pause relies on job-control signals.
type Player struct{}

func NewPlayer() *Player { return &Player{} }

func (p *Player) Play(clip *media.AudioClip) error {
	return fmt.Errorf("ffplay playback is not supported on windows")
}

func (p *Player) Pause()                  {}
func (p *Player) Resume()                 {}
func (p *Player) Stop()                   {}
func (p *Player) SetVolume(v float64)     {}
func (p *Player) Busy() bool              { return false }
func (p *Player) Position() time.Duration { return 0 }
