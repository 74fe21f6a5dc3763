package playback_test

import (
	"bytes"
	"image"
	"testing"

	"github.com/matryer/is"

	"github.com/chriscow/talking-history-go/pkg/media"
	"github.com/chriscow/talking-history-go/pkg/playback"
)

func white(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestCrossfadeFrameCountAndEndpoints(t *testing.T) {
	is := is.New(t)
	a := media.Black(16)
	b := white(16)

	fade := playback.NewCrossfade(a, b, 40)

	var frames []*image.NRGBA
	for {
		frame, ok := fade.Next()
		if !ok {
			break
		}
		frames = append(frames, frame)
	}

	// 40 steps yield 41 frames with exact endpoints.
	is.Equal(len(frames), 41)
	is.True(bytes.Equal(frames[0].Pix, a.Pix))
	is.True(bytes.Equal(frames[40].Pix, b.Pix))
	is.True(fade.Done())

	// Non-restartable: exhausted means exhausted.
	_, ok := fade.Next()
	is.True(!ok)
}

func TestCrossfadeMonotonicBlend(t *testing.T) {
	is := is.New(t)
	fade := playback.NewCrossfade(media.Black(4), white(4), 40)

	prev := -1
	for {
		frame, ok := fade.Next()
		if !ok {
			break
		}
		v := int(frame.Pix[0])
		is.True(v >= prev)
		prev = v
	}
	is.Equal(prev, 255)
}

func TestCrossfadeDefaultSteps(t *testing.T) {
	is := is.New(t)
	fade := playback.NewCrossfade(media.Black(4), white(4), 0)

	count := 0
	for {
		if _, ok := fade.Next(); !ok {
			break
		}
		count++
	}
	is.Equal(count, playback.DefaultFadeSteps+1)
}
