package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/halcyonv/prompt-video-generator/internal/script"
	"github.com/halcyonv/prompt-video-generator/internal/style"
	"github.com/halcyonv/prompt-video-generator/internal/timeline"
	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

// Engine renders one act's visuals into a silent video clip. Rendering
// can take minutes; implementations must respect ctx.
type Engine interface {
	Render(ctx context.Context, actID string, visuals []script.VisualSpec, points []timeline.SyncPoint, styleCfg *style.Config, outputPath string) error
}

// ErrTimeout marks a render that exceeded its deadline.
var ErrTimeout = errors.New("render timed out")

// ScenePlan is the document handed to the external renderer: everything
// it needs to draw one act, with resolved timing.
type ScenePlan struct {
	ActID    string               `json:"act_id"`
	Visuals  []script.VisualSpec  `json:"visuals"`
	Timeline []timeline.SyncPoint `json:"timeline"`
	Style    sceneStyle           `json:"style"`
	Output   string               `json:"output"`
}

type sceneStyle struct {
	Quality         string `json:"quality"`
	BackgroundColor string `json:"background_color"`
	FontColor       string `json:"font_color"`
}

// CommandEngine shells out to a configured renderer binary. The scene
// plan is written as JSON next to the output artifact and passed as the
// only argument; the binary must exit zero and leave the video at the
// plan's output path.
type CommandEngine struct {
	command string
	timeout time.Duration
}

func NewCommandEngine(command string, timeout time.Duration) *CommandEngine {
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &CommandEngine{command: command, timeout: timeout}
}

func (e *CommandEngine) Render(ctx context.Context, actID string, visuals []script.VisualSpec, points []timeline.SyncPoint, styleCfg *style.Config, outputPath string) error {
	if e.command == "" {
		return fmt.Errorf("renderer command is not configured")
	}
	cmdPath, err := exec.LookPath(e.command)
	if err != nil {
		return fmt.Errorf("renderer %q not found: %w", e.command, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create render output directory: %w", err)
	}

	plan := ScenePlan{
		ActID:    actID,
		Visuals:  visuals,
		Timeline: points,
		Style: sceneStyle{
			Quality:         styleCfg.Video.Quality,
			BackgroundColor: styleCfg.Video.BackgroundColor,
			FontColor:       styleCfg.Video.FontColor,
		},
		Output: outputPath,
	}

	planPath := outputPath + ".scene.json"
	raw, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene plan: %w", err)
	}
	if err := os.WriteFile(planPath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write scene plan: %w", err)
	}

	log.Info("Rendering act %s (%d visuals)", actID, len(visuals))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cmdPath, planPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: act %s after %s", ErrTimeout, actID, e.timeout)
		}
		return fmt.Errorf("renderer failed for act %s: %w: %s", actID, err, string(output))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("renderer exited cleanly but produced no artifact for act %s: %w", actID, err)
	}

	return nil
}
