package fake

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/chriscow/talking-history-go/pkg/ai/tts"
	"github.com/chriscow/talking-history-go/pkg/media"
)

// FakeSynthesizer generates a sine-wave WAV clip of a configurable duration.
type FakeSynthesizer struct {
	mu       sync.Mutex
	duration time.Duration
	errs     []error
	calls    int
	last     tts.Request
}

// NewFakeSynthesizer creates a fake synthesizer producing clips of the
// given duration. Zero means one second.
func NewFakeSynthesizer(duration time.Duration) *FakeSynthesizer {
	if duration <= 0 {
		duration = time.Second
	}
	return &FakeSynthesizer{duration: duration}
}

// FailFirst queues errors to be returned before any success.
func (f *FakeSynthesizer) FailFirst(errs ...error) *FakeSynthesizer {
	f.errs = errs
	return f
}

// Synthesize returns a 440Hz sine wave WAV of the configured duration.
func (f *FakeSynthesizer) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return media.EncodeWAV(SineClip(f.duration)), nil
}

// Calls returns how many times Synthesize was invoked.
func (f *FakeSynthesizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequest returns the most recent request.
func (f *FakeSynthesizer) LastRequest() tts.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// SineClip builds a mono 16kHz sine-wave clip of the given duration.
func SineClip(duration time.Duration) *media.AudioClip {
	const sampleRate = 16000
	const frequency = 440.0

	samples := int(duration.Seconds() * sampleRate)
	data := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := math.Sin(2*math.Pi*frequency*float64(i)/sampleRate) * 0.3
		s := int16(v * 32767)
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return &media.AudioClip{Data: data, SampleRate: sampleRate, NumChannels: 1}
}
