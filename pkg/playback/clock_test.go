package playback_test

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/playback"
	"github.com/chriscow/talking-history-go/pkg/playback/fake"
)

func speechClip(seconds float64) *media.AudioClip {
	samples := int(seconds * 16000)
	return &media.AudioClip{
		Data:        make([]byte, samples*2),
		SampleRate:  16000,
		NumChannels: 1,
	}
}

func TestClockFadeAlpha(t *testing.T) {
	tests := []struct {
		name      string
		elapsed   time.Duration
		wantAlpha float64
		inWindow  bool
	}{
		{"start", 0, 0, false},
		{"middle", 5 * time.Second, 0, false},
		{"window edge", 8 * time.Second, 0, true},
		{"half faded", 9 * time.Second, 0.5, true},
		{"end", 10 * time.Second, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			player := fake.NewFakePlayer()
			is.NoErr(player.Play(speechClip(10)))
			player.Advance(tt.elapsed)

			clock := playback.NewClock(player, 10*time.Second, 2*time.Second)
			is.Equal(clock.InFadeWindow(), tt.inWindow)
			is.Equal(clock.FadeAlpha(), tt.wantAlpha)
			is.Equal(clock.Remaining(), 10*time.Second-tt.elapsed)
		})
	}
}

func TestClockCapsElapsedAtTotal(t *testing.T) {
	is := is.New(t)
	player := fake.NewFakePlayer()
	is.NoErr(player.Play(speechClip(20)))
	player.Advance(15 * time.Second)

	// The clock's notion of the clip can be shorter than what the player
	// reports, e.g. after truncation. Remaining never goes negative.
	clock := playback.NewClock(player, 10*time.Second, 2*time.Second)
	is.Equal(clock.Elapsed(), 10*time.Second)
	is.Equal(clock.Remaining(), time.Duration(0))
	is.Equal(clock.FadeAlpha(), 1.0)
}
