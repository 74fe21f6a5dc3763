//go:build !windows

package ffmpeg

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestPlayArgs(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		offset time.Duration
		want   []string
	}{
		{
			"full volume from start",
			1, 0,
			[]string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", "100", "clip.wav"},
		},
		{
			"half volume",
			0.5, 0,
			[]string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", "50", "clip.wav"},
		},
		{
			"restart mid-clip seeks to the position",
			0.25, 1500 * time.Millisecond,
			[]string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", "25", "-ss", "1.500", "clip.wav"},
		},
		{
			"muted",
			0, 0,
			[]string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", "0", "clip.wav"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(playArgs("clip.wav", tt.volume, tt.offset), tt.want)
		})
	}
}
