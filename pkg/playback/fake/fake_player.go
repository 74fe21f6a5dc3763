// Package fake provides test doubles for the playback collaborators: an
// audio player with a manually advanced position, a frame-recording
// display, and a scripted video decoder.
package fake

import (
	"sync"
	"time"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// FakePlayer simulates the audio engine. Time does not pass on its own;
// tests advance the position explicitly.
type FakePlayer struct {
	mu      sync.Mutex
	clip    *media.AudioClip
	pos     time.Duration
	playing bool
	paused  bool
	volume  float64
	playErr error
}

// NewFakePlayer creates an idle fake player.
func NewFakePlayer() *FakePlayer {
	return &FakePlayer{volume: 1}
}

// FailPlay makes the next Play call return err.
func (p *FakePlayer) FailPlay(err error) *FakePlayer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playErr = err
	return p
}

// Play loads the clip and starts from position zero.
func (p *FakePlayer) Play(clip *media.AudioClip) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		err := p.playErr
		p.playErr = nil
		return err
	}
	p.clip = clip
	p.pos = 0
	p.playing = true
	p.paused = false
	return nil
}

func (p *FakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

func (p *FakePlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
}

func (p *FakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.paused = false
	p.pos = 0
}

func (p *FakePlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
}

// Volume returns the last applied volume.
func (p *FakePlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Busy reports whether audio is loaded and has not run out. Paused audio
// stays busy.
func (p *FakePlayer) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.pos < p.clip.Duration()
}

// Position returns the simulated playback position.
func (p *FakePlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Advance moves the position forward as if d of audio had played. Paused or
// stopped players do not advance.
func (p *FakePlayer) Advance(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused {
		return
	}
	p.pos += d
	if p.pos > p.clip.Duration() {
		p.pos = p.clip.Duration()
	}
}

// Paused reports whether the player is paused.
func (p *FakePlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}
