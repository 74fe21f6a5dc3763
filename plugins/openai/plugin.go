// Package openai provides OpenAI-backed capabilities: Whisper
// transcription, chat-model composition, and speech synthesis. It has no
// image or video models; pair it with the replicate plugin for those.
package openai

import (
	"github.com/chriscow/talking-history-go/pkg/ai/llm"
	"github.com/chriscow/talking-history-go/pkg/ai/stt"
	"github.com/chriscow/talking-history-go/pkg/ai/tts"
	"github.com/chriscow/talking-history-go/plugins"
)

// Plugin bundles the OpenAI-backed capabilities.
type Plugin struct {
	*plugins.BasePlugin
	apiKey string
}

// NewPlugin creates the plugin with the given API key.
func NewPlugin(apiKey string) *Plugin {
	return &Plugin{
		BasePlugin: plugins.NewBasePlugin("openai", "1.0.0",
			"OpenAI services (Whisper STT, chat composition, TTS)"),
		apiKey: apiKey,
	}
}

// Register installs the capability factories.
func (p *Plugin) Register(registry *plugins.Registry) error {
	registry.RegisterTranscriber("openai-whisper", func() stt.Transcriber {
		return NewWhisperTranscriber(p.apiKey)
	})
	registry.RegisterComposer("gpt-4o", func() llm.TextGenerator {
		return NewChatComposer(p.apiKey, "gpt-4o")
	})
	registry.RegisterComposer("gpt-4o-mini", func() llm.TextGenerator {
		return NewChatComposer(p.apiKey, "gpt-4o-mini")
	})
	registry.RegisterSynthesizer("openai-tts", func() tts.SpeechSynthesizer {
		return NewSynthesizer(p.apiKey)
	})
	return nil
}

// RegisterPlugin installs the OpenAI plugin into the global registry.
func RegisterPlugin(apiKey string) error {
	return plugins.RegisterPlugin(NewPlugin(apiKey))
}
