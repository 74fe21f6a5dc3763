package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatComposer generates the persona response with a chat model. The
// response streams in deltas that are concatenated before the caller parses
// them as JSON.
type ChatComposer struct {
	client *openai.Client
	model  string
}

// NewChatComposer creates a composer for the given model.
func NewChatComposer(apiKey, model string) *ChatComposer {
	return &ChatComposer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *ChatComposer) Generate(ctx context.Context, prompt, systemInstructions string) (string, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstructions},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 512,
		Stream:    true,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("chat completion stream: %w", err)
		}
		if len(chunk.Choices) > 0 {
			sb.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	return sb.String(), nil
}
