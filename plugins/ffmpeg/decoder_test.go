package ffmpeg

import (
	"testing"

	"github.com/matryer/is"

	"github.com/chriscow/talking-history-go/pkg/media"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"rational", "30000/1001", 30000.0 / 1001.0},
		{"whole rational", "25/1", 25},
		{"plain", "24", 24},
		{"empty", "", media.DefaultFPS},
		{"zero rational", "0/0", media.DefaultFPS},
		{"zero denominator", "25/0", media.DefaultFPS},
		{"garbage", "N/A", media.DefaultFPS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(parseFrameRate(tt.raw), tt.want)
		})
	}
}
