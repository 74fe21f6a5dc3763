package replicate

import (
	"github.com/chriscow/talking-history-go/pkg/ai/imagegen"
	"github.com/chriscow/talking-history-go/pkg/ai/llm"
	"github.com/chriscow/talking-history-go/pkg/ai/stt"
	"github.com/chriscow/talking-history-go/pkg/ai/tts"
	"github.com/chriscow/talking-history-go/pkg/ai/videogen"
	"github.com/chriscow/talking-history-go/plugins"
)

// Plugin bundles the Replicate-backed capabilities.
type Plugin struct {
	*plugins.BasePlugin
	client *Client
}

// NewPlugin creates the plugin with the given API token.
func NewPlugin(token string) (*Plugin, error) {
	client, err := NewClient(token, nil)
	if err != nil {
		return nil, err
	}
	return &Plugin{
		BasePlugin: plugins.NewBasePlugin("replicate", "1.0.0",
			"Replicate-hosted models (STT, composition, image, video, TTS)"),
		client: client,
	}, nil
}

// Register installs the capability factories.
func (p *Plugin) Register(registry *plugins.Registry) error {
	registry.RegisterTranscriber("whisper", func() stt.Transcriber {
		return NewWhisperTranscriber(p.client, "")
	})
	registry.RegisterComposer("gpt-5-mini", func() llm.TextGenerator {
		return NewComposer(p.client, "")
	})
	registry.RegisterIllustrator("qwen-image", func() imagegen.ImageGenerator {
		return NewIllustrator(p.client, "")
	})
	registry.RegisterAnimator("wan-i2v", func() videogen.VideoGenerator {
		return NewAnimator(p.client, "")
	})
	registry.RegisterSynthesizer("xtts-v2", func() tts.SpeechSynthesizer {
		return NewSynthesizer(p.client, "")
	})
	return nil
}

// RegisterPlugin installs the Replicate plugin into the global registry.
func RegisterPlugin(token string) error {
	plugin, err := NewPlugin(token)
	if err != nil {
		return err
	}
	return plugins.RegisterPlugin(plugin)
}
