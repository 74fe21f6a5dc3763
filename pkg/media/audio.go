// Package media holds the artifact types passed between pipeline stages and
// playback: PCM audio clips, square portrait images, and video descriptors.
package media

import (
	"fmt"
	"time"
)

// AudioClip is a decoded waveform: 16-bit little-endian PCM plus format.
type AudioClip struct {
	Data        []byte
	SampleRate  int
	NumChannels int
}

// Duration returns the playing time of the clip.
func (c *AudioClip) Duration() time.Duration {
	if c == nil || c.SampleRate == 0 || c.NumChannels == 0 {
		return 0
	}
	samples := len(c.Data) / (2 * c.NumChannels)
	return time.Duration(float64(samples) / float64(c.SampleRate) * float64(time.Second))
}

// SampleCount returns the number of samples per channel.
func (c *AudioClip) SampleCount() int {
	if c == nil || c.NumChannels == 0 {
		return 0
	}
	return len(c.Data) / (2 * c.NumChannels)
}

// Truncate trims the clip in place so its duration does not exceed max.
// Clips at or under the limit are left untouched.
func (c *AudioClip) Truncate(max time.Duration) {
	if c == nil || max <= 0 {
		return
	}
	maxSamples := int(max.Seconds() * float64(c.SampleRate))
	maxBytes := maxSamples * 2 * c.NumChannels
	if len(c.Data) > maxBytes {
		c.Data = c.Data[:maxBytes]
	}
}

// Clone returns a deep copy of the clip.
func (c *AudioClip) Clone() *AudioClip {
	data := make([]byte, len(c.Data))
	copy(data, c.Data)
	return &AudioClip{
		Data:        data,
		SampleRate:  c.SampleRate,
		NumChannels: c.NumChannels,
	}
}

// IsEmpty returns true if the clip contains no audio data.
func (c *AudioClip) IsEmpty() bool {
	return c == nil || len(c.Data) == 0
}

func (c *AudioClip) String() string {
	return fmt.Sprintf("AudioClip{samples=%d, rate=%d, channels=%d, duration=%v}",
		c.SampleCount(), c.SampleRate, c.NumChannels, c.Duration())
}
