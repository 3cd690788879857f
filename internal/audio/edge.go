package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

const edgeTimeout = 2 * time.Minute

// EdgeProvider shells out to the edge-tts command line tool. Free, no
// credentials, no word timestamps.
type EdgeProvider struct {
	command string
	prober  DurationProber
}

func NewEdgeProvider(prober DurationProber) *EdgeProvider {
	return &EdgeProvider{
		command: "edge-tts",
		prober:  prober,
	}
}

func (p *EdgeProvider) Name() string {
	return "edge"
}

func (p *EdgeProvider) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (*SynthesisResult, error) {
	if text == "" {
		return nil, fmt.Errorf("narration text is empty")
	}

	cmdPath, err := exec.LookPath(p.command)
	if err != nil {
		return nil, fmt.Errorf("%s is not installed: %w", p.command, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, edgeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cmdPath, p.args(text, voice, speed, outputPath)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("edge-tts timed out after %s", edgeTimeout)
		}
		return nil, fmt.Errorf("edge-tts failed: %w: %s", err, string(output))
	}

	duration, err := p.prober.ProbeDuration(ctx, outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to measure audio duration: %w", err)
	}

	log.Debug("edge-tts produced %s (%.2fs)", filepath.Base(outputPath), duration)

	return &SynthesisResult{
		AudioPath: outputPath,
		Duration:  duration,
	}, nil
}

func (p *EdgeProvider) args(text, voice string, speed float64, outputPath string) []string {
	args := []string{
		"--voice", voice,
		"--text", text,
		"--write-media", outputPath,
	}
	// edge-tts expects a signed percentage rate offset.
	if speed != 0 && speed != 1.0 {
		args = append(args, "--rate", fmt.Sprintf("%+d%%", int(math.Round((speed-1.0)*100))))
	}
	return args
}
