// Package llm defines the text-generation capability consumed by the
// composition stage.
package llm

import "context"

// TextGenerator produces a completion for a prompt under system
// instructions. Providers that stream their output concatenate the chunks
// and return the full text; callers always see one string.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, systemInstructions string) (string, error)
}

// TextGeneratorFunc adapts a function to the TextGenerator interface.
type TextGeneratorFunc func(ctx context.Context, prompt, systemInstructions string) (string, error)

func (f TextGeneratorFunc) Generate(ctx context.Context, prompt, systemInstructions string) (string, error) {
	return f(ctx, prompt, systemInstructions)
}
