package audio

import (
	"context"
	"fmt"
)

// Provider is one text-to-speech backend.
//
// Synthesize writes the audio artifact to outputPath and reports its
// measured duration. WordTimestamps may legitimately be nil; callers fall
// back to estimation. Name identifies the provider in cache keys, so it
// must be stable across releases.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (*SynthesisResult, error)
}

// DurationProber measures the playable duration of a media artifact.
// Satisfied by media.FFmpeg.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// NewProvider returns the named provider.
func NewProvider(name string, cfg ProviderConfig, prober DurationProber) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(cfg, prober), nil
	case "edge":
		return NewEdgeProvider(prober), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", name)
	}
}

// ProviderConfig carries credentials and endpoints for HTTP providers.
type ProviderConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout int // seconds
}
