package media

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func clipOf(seconds float64, rate, channels int) *AudioClip {
	samples := int(seconds * float64(rate))
	return &AudioClip{
		Data:        make([]byte, samples*2*channels),
		SampleRate:  rate,
		NumChannels: channels,
	}
}

func TestAudioClipDuration(t *testing.T) {
	is := is.New(t)
	is.Equal(clipOf(2, 16000, 1).Duration(), 2*time.Second)
	is.Equal(clipOf(0.5, 24000, 2).Duration(), 500*time.Millisecond)

	var nilClip *AudioClip
	is.Equal(nilClip.Duration(), time.Duration(0))
	is.True(nilClip.IsEmpty())
}

func TestAudioClipTruncate(t *testing.T) {
	is := is.New(t)

	clip := clipOf(35, 24000, 2)
	clip.Truncate(29 * time.Second)
	is.Equal(clip.Duration(), 29*time.Second)

	// Frame alignment survives truncation.
	is.Equal(len(clip.Data)%(2*clip.NumChannels), 0)

	// Clips already under the cap are untouched.
	short := clipOf(10, 24000, 2)
	short.Truncate(29 * time.Second)
	is.Equal(short.Duration(), 10*time.Second)

	// Exactly at the cap is untouched too.
	exact := clipOf(29, 16000, 1)
	before := len(exact.Data)
	exact.Truncate(29 * time.Second)
	is.Equal(len(exact.Data), before)
}

func TestAudioClipClone(t *testing.T) {
	is := is.New(t)
	clip := clipOf(1, 16000, 1)
	clip.Data[0] = 0x7f

	dup := clip.Clone()
	dup.Data[0] = 0
	is.Equal(clip.Data[0], byte(0x7f))
	is.Equal(dup.SampleRate, clip.SampleRate)
}
