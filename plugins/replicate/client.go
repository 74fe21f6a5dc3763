// Package replicate backs all five generative capabilities with hosted
// Replicate models: Whisper transcription, text composition, portrait
// generation, image-to-video animation, and XTTS voice cloning.
package replicate

import (
	"context"
	"fmt"
	"strings"

	replicate "github.com/replicate/replicate-go"

	"github.com/chriscow/talking-history-go/pkg/ai"
	"github.com/chriscow/talking-history-go/pkg/fetch"
)

// Default model identifiers. Pinned versions where the model requires one.
const (
	ModelWhisper  = "openai/whisper:8099696689d249cf8b122d833c36ac3f75505c666a395ca40ef26f68e7d3d16e"
	ModelComposer = "openai/gpt-5-mini"
	ModelImage    = "qwen/qwen-image"
	ModelVideo    = "wan-video/wan-2.2-i2v-fast"
	ModelTTS      = "lucataco/xtts-v2:684bc3855b37866c0c65add2ff39c78f3dea3f4ff103a436465326e0f438d55e"
)

// Client wraps the Replicate API client with error classification and
// artifact fetching shared by the capability implementations.
type Client struct {
	r8      *replicate.Client
	fetcher fetch.Fetcher
}

// NewClient creates a client with the given API token.
func NewClient(token string, fetcher fetch.Fetcher) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("replicate API token is required")
	}
	r8, err := replicate.NewClient(replicate.WithToken(token))
	if err != nil {
		return nil, fmt.Errorf("create replicate client: %w", err)
	}
	if fetcher == nil {
		fetcher = fetch.NewHTTPFetcher()
	}
	return &Client{r8: r8, fetcher: fetcher}, nil
}

// run executes one prediction synchronously, classifying failures for the
// retrying invoker. Rate-limit messages pass through untouched so the
// invoker can read the reset hint.
func (c *Client) run(ctx context.Context, model string, input replicate.PredictionInput) (replicate.PredictionOutput, error) {
	out, err := c.r8.Run(ctx, model, input, nil)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "401"):
		return ai.NewFatalError(err, "invalid Replicate API token")
	case strings.Contains(msg, "422"),
		strings.Contains(msg, "invalid version"):
		return ai.NewFatalError(err, err.Error())
	}
	return err
}

// outputString extracts a single URL-or-text result from the loosely typed
// prediction output.
func outputString(out replicate.PredictionOutput) (string, error) {
	switch v := out.(type) {
	case string:
		return v, nil
	case []any:
		if len(v) == 0 {
			return "", fmt.Errorf("empty prediction output")
		}
		return fmt.Sprint(v[0]), nil
	case nil:
		return "", fmt.Errorf("nil prediction output")
	default:
		return fmt.Sprint(v), nil
	}
}

// outputStrings extracts a list result.
func outputStrings(out replicate.PredictionOutput) ([]string, error) {
	switch v := out.(type) {
	case []any:
		urls := make([]string, 0, len(v))
		for _, item := range v {
			urls = append(urls, fmt.Sprint(item))
		}
		return urls, nil
	case string:
		return []string{v}, nil
	case nil:
		return nil, fmt.Errorf("nil prediction output")
	default:
		return []string{fmt.Sprint(v)}, nil
	}
}
