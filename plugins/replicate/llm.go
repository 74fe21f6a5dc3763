package replicate

import (
	"context"
	"strings"

	replicate "github.com/replicate/replicate-go"
)

// maxComposerTokens bounds the monologue payload; the composition prompt
// asks for 100-200 words.
const maxComposerTokens = 512

// Composer generates the persona response with a hosted language model.
// Output arrives as a chunk list that is concatenated before parsing.
type Composer struct {
	client *Client
	model  string
}

// NewComposer creates a composer. An empty model uses ModelComposer.
func NewComposer(client *Client, model string) *Composer {
	if model == "" {
		model = ModelComposer
	}
	return &Composer{client: client, model: model}
}

func (c *Composer) Generate(ctx context.Context, prompt, systemInstructions string) (string, error) {
	out, err := c.client.run(ctx, c.model, replicate.PredictionInput{
		"prompt":        prompt,
		"system_prompt": systemInstructions,
		// Both spellings: model schemas differ.
		"max_tokens":     maxComposerTokens,
		"max_new_tokens": maxComposerTokens,
	})
	if err != nil {
		return "", err
	}

	if chunks, ok := out.([]any); ok {
		var sb strings.Builder
		for _, chunk := range chunks {
			if s, ok := chunk.(string); ok {
				sb.WriteString(s)
			}
		}
		return sb.String(), nil
	}
	return outputString(out)
}
