package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

// OpenAIProvider synthesizes speech through the OpenAI audio API.
// The API returns no word-level timestamps; callers estimate them.
type OpenAIProvider struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	prober     DurationProber
}

func NewOpenAIProvider(cfg ProviderConfig, prober DurationProber) *OpenAIProvider {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "tts-1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60
	}

	return &OpenAIProvider{
		apiKey: cfg.APIKey,
		apiURL: apiURL,
		model:  model,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		prober: prober,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

type speechRequest struct {
	Model string  `json:"model"`
	Input string  `json:"input"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed,omitempty"`
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (*SynthesisResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}
	if text == "" {
		return nil, fmt.Errorf("narration text is empty")
	}

	payload, err := json.Marshal(speechRequest{
		Model: p.model,
		Input: text,
		Voice: voice,
		Speed: speed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.apiURL+"/audio/speech", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if os.IsTimeout(err) {
			return nil, fmt.Errorf("speech request timed out: %w", err)
		}
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to write audio artifact: %w", err)
	}

	duration, err := p.prober.ProbeDuration(ctx, outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to measure audio duration: %w", err)
	}

	log.Debug("OpenAI TTS produced %s (%.2fs)", filepath.Base(outputPath), duration)

	// No word timestamps from this API.
	return &SynthesisResult{
		AudioPath: outputPath,
		Duration:  duration,
	}, nil
}
