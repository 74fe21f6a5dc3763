package replicate

import (
	"context"

	replicate "github.com/replicate/replicate-go"

	"github.com/chriscow/talking-history-go/pkg/ai/imagegen"
)

// Illustrator generates portraits with a hosted image model.
type Illustrator struct {
	client *Client
	model  string
}

// NewIllustrator creates an illustrator. An empty model uses ModelImage.
func NewIllustrator(client *Client, model string) *Illustrator {
	if model == "" {
		model = ModelImage
	}
	return &Illustrator{client: client, model: model}
}

func (i *Illustrator) Generate(ctx context.Context, req imagegen.Request) ([]string, error) {
	input := replicate.PredictionInput{"prompt": req.Prompt}
	if req.AspectRatio != "" {
		input["aspect_ratio"] = req.AspectRatio
	}
	if req.NumOutputs > 0 {
		input["num_outputs"] = req.NumOutputs
	}

	out, err := i.client.run(ctx, i.model, input)
	if err != nil {
		return nil, err
	}
	return outputStrings(out)
}
