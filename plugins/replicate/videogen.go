package replicate

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	replicate "github.com/replicate/replicate-go"
	"github.com/vincent-petithory/dataurl"

	"github.com/chriscow/talking-history-go/pkg/ai/videogen"
	"github.com/chriscow/talking-history-go/pkg/media"
)

// Animator turns the generated portrait into a short talking-head clip with
// a hosted image-to-video model.
type Animator struct {
	client *Client
	model  string
}

// NewAnimator creates an animator. An empty model uses ModelVideo.
func NewAnimator(client *Client, model string) *Animator {
	if model == "" {
		model = ModelVideo
	}
	return &Animator{client: client, model: model}
}

func (a *Animator) Generate(ctx context.Context, req videogen.Request) (string, error) {
	if req.SourceImage == nil {
		return "", fmt.Errorf("source image is required")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, req.SourceImage); err != nil {
		return "", fmt.Errorf("encode source image: %w", err)
	}

	input := replicate.PredictionInput{
		"image":        dataurl.New(buf.Bytes(), "image/png").String(),
		"prompt":       req.Prompt,
		"aspect_ratio": "1:1",
	}
	// The capped speech clip drives the lip sync.
	if !req.Audio.IsEmpty() {
		input["audio"] = dataurl.New(media.EncodeWAV(req.Audio), "audio/wav").String()
	}

	out, err := a.client.run(ctx, a.model, input)
	if err != nil {
		return "", err
	}
	return outputString(out)
}
