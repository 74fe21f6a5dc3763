package playback

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// Crossfade is a lazy, finite, non-restartable sequence of blended frames
// between two stills. For N steps it yields N+1 frames at linear alpha
// increments: the first frame is bit-equal to the source, the last bit-equal
// to the target.
type Crossfade struct {
	from  *image.NRGBA
	to    *image.NRGBA
	steps int
	next  int
}

// NewCrossfade prepares a fade from one image to another. steps <= 0 uses
// DefaultFadeSteps.
func NewCrossfade(from, to image.Image, steps int) *Crossfade {
	if steps <= 0 {
		steps = DefaultFadeSteps
	}
	return &Crossfade{
		from:  imaging.Clone(from),
		to:    imaging.Clone(to),
		steps: steps,
	}
}

// Next returns the following frame in the sequence, or false once the fade
// has yielded all steps+1 frames.
func (c *Crossfade) Next() (*image.NRGBA, bool) {
	if c.next > c.steps {
		return nil, false
	}
	alpha := float64(c.next) / float64(c.steps)
	c.next++
	return media.Blend(c.from, c.to, alpha), true
}

// Done reports whether the sequence is exhausted.
func (c *Crossfade) Done() bool {
	return c.next > c.steps
}
