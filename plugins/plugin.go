// Package plugins manages provider registration. A plugin bundles concrete
// implementations of the generative capabilities (speech-to-text, text
// generation, image generation, image-to-video, speech synthesis) behind
// named factories, so the CLI can assemble a pipeline from configuration.
package plugins

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chriscow/talking-history-go/pkg/ai/imagegen"
	"github.com/chriscow/talking-history-go/pkg/ai/llm"
	"github.com/chriscow/talking-history-go/pkg/ai/stt"
	"github.com/chriscow/talking-history-go/pkg/ai/tts"
	"github.com/chriscow/talking-history-go/pkg/ai/videogen"
)

// Plugin is a named bundle of capability factories.
type Plugin interface {
	Name() string
	Version() string
	Description() string

	// Register installs the plugin's factories into the registry.
	Register(registry *Registry) error
}

// Registry maps service names to capability factories.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin

	transcribers map[string]func() stt.Transcriber
	composers    map[string]func() llm.TextGenerator
	illustrators map[string]func() imagegen.ImageGenerator
	animators    map[string]func() videogen.VideoGenerator
	synthesizers map[string]func() tts.SpeechSynthesizer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins:      make(map[string]Plugin),
		transcribers: make(map[string]func() stt.Transcriber),
		composers:    make(map[string]func() llm.TextGenerator),
		illustrators: make(map[string]func() imagegen.ImageGenerator),
		animators:    make(map[string]func() videogen.VideoGenerator),
		synthesizers: make(map[string]func() tts.SpeechSynthesizer),
	}
}

var globalRegistry = NewRegistry()

// GlobalRegistry returns the process-wide registry.
func GlobalRegistry() *Registry {
	return globalRegistry
}

// RegisterPlugin installs a plugin into the global registry.
func RegisterPlugin(plugin Plugin) error {
	return globalRegistry.RegisterPlugin(plugin)
}

// RegisterPlugin installs a plugin into this registry.
func (r *Registry) RegisterPlugin(plugin Plugin) error {
	r.mu.Lock()
	name := plugin.Name()
	if _, exists := r.plugins[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("plugin %s already registered", name)
	}
	r.plugins[name] = plugin
	// Released before Register so factory registration can re-enter.
	r.mu.Unlock()

	return plugin.Register(r)
}

// Plugins returns the installed plugins sorted by name.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (r *Registry) RegisterTranscriber(name string, factory func() stt.Transcriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcribers[name] = factory
}

func (r *Registry) RegisterComposer(name string, factory func() llm.TextGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.composers[name] = factory
}

func (r *Registry) RegisterIllustrator(name string, factory func() imagegen.ImageGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.illustrators[name] = factory
}

func (r *Registry) RegisterAnimator(name string, factory func() videogen.VideoGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.animators[name] = factory
}

func (r *Registry) RegisterSynthesizer(name string, factory func() tts.SpeechSynthesizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synthesizers[name] = factory
}

func (r *Registry) CreateTranscriber(name string) (stt.Transcriber, error) {
	r.mu.RLock()
	factory, ok := r.transcribers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transcriber %q not found", name)
	}
	return factory(), nil
}

func (r *Registry) CreateComposer(name string) (llm.TextGenerator, error) {
	r.mu.RLock()
	factory, ok := r.composers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("composer %q not found", name)
	}
	return factory(), nil
}

func (r *Registry) CreateIllustrator(name string) (imagegen.ImageGenerator, error) {
	r.mu.RLock()
	factory, ok := r.illustrators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("illustrator %q not found", name)
	}
	return factory(), nil
}

func (r *Registry) CreateAnimator(name string) (videogen.VideoGenerator, error) {
	r.mu.RLock()
	factory, ok := r.animators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("animator %q not found", name)
	}
	return factory(), nil
}

func (r *Registry) CreateSynthesizer(name string) (tts.SpeechSynthesizer, error) {
	r.mu.RLock()
	factory, ok := r.synthesizers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("synthesizer %q not found", name)
	}
	return factory(), nil
}

// Service listings, sorted for stable CLI output.

func (r *Registry) ListTranscribers() []string { return sortedKeys(r, r.transcribers) }
func (r *Registry) ListComposers() []string    { return sortedKeys(r, r.composers) }
func (r *Registry) ListIllustrators() []string { return sortedKeys(r, r.illustrators) }
func (r *Registry) ListAnimators() []string    { return sortedKeys(r, r.animators) }
func (r *Registry) ListSynthesizers() []string { return sortedKeys(r, r.synthesizers) }

func sortedKeys[V any](r *Registry, m map[string]V) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BasePlugin carries plugin metadata for embedding.
type BasePlugin struct {
	name        string
	version     string
	description string
}

// NewBasePlugin creates plugin metadata.
func NewBasePlugin(name, version, description string) *BasePlugin {
	return &BasePlugin{name: name, version: version, description: description}
}

func (bp *BasePlugin) Name() string        { return bp.name }
func (bp *BasePlugin) Version() string     { return bp.version }
func (bp *BasePlugin) Description() string { return bp.description }
