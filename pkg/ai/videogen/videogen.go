// Package videogen defines the optional image-to-video capability consumed
// by the animation stage. Pipelines without a VideoGenerator skip the stage
// and play back the still portrait instead.
package videogen

import (
	"context"
	"image"

	"github.com/chriscow/talking-history-go/pkg/media"
)

// Request describes an image-to-video generation call. Audio is optional;
// when present it must already be bounded to the service's duration cap.
type Request struct {
	SourceImage image.Image
	Audio       *media.AudioClip
	Prompt      string
}

// VideoGenerator animates a still portrait into a short clip and returns
// the delivery URL of the rendered video.
type VideoGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// VideoGeneratorFunc adapts a function to the VideoGenerator interface.
type VideoGeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f VideoGeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
