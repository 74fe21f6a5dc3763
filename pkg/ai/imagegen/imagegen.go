// Package imagegen defines the image-generation capability consumed by the
// illustration stage.
package imagegen

import "context"

// Request describes a portrait generation call.
type Request struct {
	Prompt      string
	AspectRatio string // e.g. "1:1"
	NumOutputs  int
}

// ImageGenerator renders one or more images for a prompt and returns their
// delivery URLs. A successful call always yields at least one URL; the
// caller fetches and decodes the bytes.
type ImageGenerator interface {
	Generate(ctx context.Context, req Request) ([]string, error)
}

// ImageGeneratorFunc adapts a function to the ImageGenerator interface.
type ImageGeneratorFunc func(ctx context.Context, req Request) ([]string, error)

func (f ImageGeneratorFunc) Generate(ctx context.Context, req Request) ([]string, error) {
	return f(ctx, req)
}
