package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/halcyonv/prompt-video-generator/internal/audio"
	"github.com/halcyonv/prompt-video-generator/internal/render"
	"github.com/halcyonv/prompt-video-generator/internal/script"
	"github.com/halcyonv/prompt-video-generator/internal/style"
	"github.com/halcyonv/prompt-video-generator/internal/timeline"
	"github.com/halcyonv/prompt-video-generator/internal/workspace"
	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

// Synthesizer is the audio stage collaborator.
type Synthesizer interface {
	SynthesizeAct(ctx context.Context, act script.Act, outputPath string) (*audio.Segment, error)
	Estimator() *audio.Estimator
}

// Compositor is the assembly stage collaborator.
type Compositor interface {
	Combine(ctx context.Context, videoPath, audioPath, outputPath string) error
	Concatenate(ctx context.Context, clips []string, outputPath string) error
}

// Result describes a completed run.
type Result struct {
	RunID     string  `json:"run_id"`
	VideoPath string  `json:"video_path"`
	Duration  float64 `json:"duration"`
	ActCount  int     `json:"act_count"`
	Workspace string  `json:"workspace"`
}

// Pipeline runs the full prompt-to-video flow: script generation, audio
// synthesis, visual rendering, assembly. Every stage persists its
// artifacts into the run's workspace before the next stage starts, so a
// failed run can be inspected and retried without losing work.
type Pipeline struct {
	generator  script.Generator
	synth      Synthesizer
	calculator *timeline.Calculator
	engine     render.Engine
	compositor Compositor
	styleCfg   *style.Config

	workspaceRoot string
}

func New(generator script.Generator, synth Synthesizer, calculator *timeline.Calculator, engine render.Engine, compositor Compositor, styleCfg *style.Config, workspaceRoot string) *Pipeline {
	if styleCfg == nil {
		styleCfg = style.Default()
	}
	return &Pipeline{
		generator:     generator,
		synth:         synth,
		calculator:    calculator,
		engine:        engine,
		compositor:    compositor,
		styleCfg:      styleCfg,
		workspaceRoot: workspaceRoot,
	}
}

// Generate runs all stages for prompt. An empty runID allocates a fresh
// one; passing the runID of a failed run retries it in the same
// workspace, where cached audio makes completed acts cheap.
func (p *Pipeline) Generate(ctx context.Context, prompt, runID string) (*Result, error) {
	if runID == "" {
		runID = NewRunID(prompt)
	}

	ws, err := workspace.New(p.workspaceRoot, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace for run %q: %w", runID, err)
	}

	log.Info("Run %s: workspace %s", runID, ws.Dir())

	sc, err := p.runScript(ctx, ws, prompt)
	if err != nil {
		return nil, err
	}

	segments, err := p.runAudio(ctx, ws, sc)
	if err != nil {
		return nil, err
	}

	clips, err := p.runVisuals(ctx, ws, sc, segments)
	if err != nil {
		return nil, err
	}

	videoPath, err := p.runAssembly(ctx, ws, sc, segments, clips)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     runID,
		VideoPath: videoPath,
		Duration:  totalDuration(segments),
		ActCount:  len(sc.Acts),
		Workspace: ws.Dir(),
	}
	if err := ws.SaveJSON("result.json", result); err != nil {
		return nil, &StageError{Stage: StageAssembly, Workspace: ws.Dir(), Cause: err}
	}

	log.Info("Run %s done: %s (%.2fs, %d acts)", runID, videoPath, result.Duration, result.ActCount)
	return result, nil
}

func (p *Pipeline) runScript(ctx context.Context, ws *workspace.Workspace, prompt string) (*script.Script, error) {
	log.Info("Run %s: generating script", ws.RunID())

	sc, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, &StageError{Stage: StageScript, Workspace: ws.Dir(), Cause: err}
	}
	sc.SourcePrompt = prompt
	sc.StyleProfile = p.styleCfg.Name

	// Planning hints for acts the generator left unsized.
	estimator := p.synth.Estimator()
	for i := range sc.Acts {
		if sc.Acts[i].EstimatedDuration == nil {
			d := estimator.EstimateDuration(sc.Acts[i].Narration, p.styleCfg.Voice.PauseMarkers)
			sc.Acts[i].EstimatedDuration = &d
		}
	}

	if err := ws.SaveJSON("script.json", sc); err != nil {
		return nil, &StageError{Stage: StageScript, Workspace: ws.Dir(), Cause: err}
	}

	log.Info("Run %s: script %q, %d acts, ~%.1fs estimated", ws.RunID(), sc.Title, len(sc.Acts), sc.EstimatedTotalDuration())
	return sc, nil
}

func (p *Pipeline) runAudio(ctx context.Context, ws *workspace.Workspace, sc *script.Script) ([]audio.Segment, error) {
	segments := make([]audio.Segment, 0, len(sc.Acts))
	for i, act := range sc.Acts {
		log.Info("Run %s: audio [%d/%d] %s", ws.RunID(), i+1, len(sc.Acts), act.ID)

		segment, err := p.synth.SynthesizeAct(ctx, act, filepath.Join(ws.AudioDir(), act.ID+".mp3"))
		if err != nil {
			return nil, &StageError{Stage: StageAudio, ActID: act.ID, Workspace: ws.Dir(), Cause: err}
		}
		segments = append(segments, *segment)
	}

	if err := ws.SaveJSON(filepath.Join("audio", "segments.json"), segments); err != nil {
		return nil, &StageError{Stage: StageAudio, Workspace: ws.Dir(), Cause: err}
	}
	return segments, nil
}

func (p *Pipeline) runVisuals(ctx context.Context, ws *workspace.Workspace, sc *script.Script, segments []audio.Segment) ([]string, error) {
	clips := make([]string, 0, len(sc.Acts))
	for i, act := range sc.Acts {
		log.Info("Run %s: visuals [%d/%d] %s", ws.RunID(), i+1, len(sc.Acts), act.ID)

		seg := &segments[i]
		points, err := p.calculator.Calculate(act.Visuals, seg, seg.Duration)
		if err != nil {
			return nil, &StageError{Stage: StageVisuals, ActID: act.ID, Workspace: ws.Dir(), Cause: err}
		}
		if err := ws.SaveJSON(filepath.Join("visuals", act.ID+".timing.json"), points); err != nil {
			return nil, &StageError{Stage: StageVisuals, ActID: act.ID, Workspace: ws.Dir(), Cause: err}
		}

		clipPath := filepath.Join(ws.VisualsDir(), act.ID+".mp4")
		if err := p.engine.Render(ctx, act.ID, act.Visuals, points, p.styleCfg, clipPath); err != nil {
			return nil, &StageError{Stage: StageVisuals, ActID: act.ID, Workspace: ws.Dir(), Cause: err}
		}
		clips = append(clips, clipPath)
	}
	return clips, nil
}

func (p *Pipeline) runAssembly(ctx context.Context, ws *workspace.Workspace, sc *script.Script, segments []audio.Segment, clips []string) (string, error) {
	combined := make([]string, 0, len(clips))
	for i, act := range sc.Acts {
		log.Info("Run %s: assembly [%d/%d] %s", ws.RunID(), i+1, len(sc.Acts), act.ID)

		outPath := filepath.Join(ws.AssemblyDir(), act.ID+".mp4")
		if err := p.compositor.Combine(ctx, clips[i], segments[i].AudioPath, outPath); err != nil {
			return "", &StageError{Stage: StageAssembly, ActID: act.ID, Workspace: ws.Dir(), Cause: err}
		}
		combined = append(combined, outPath)
	}

	videoPath := ws.Path("final_video.mp4")
	if err := p.compositor.Concatenate(ctx, combined, videoPath); err != nil {
		return "", &StageError{Stage: StageAssembly, Workspace: ws.Dir(), Cause: err}
	}
	return videoPath, nil
}

func totalDuration(segments []audio.Segment) float64 {
	var total float64
	for _, seg := range segments {
		total += seg.Duration
	}
	return total
}
