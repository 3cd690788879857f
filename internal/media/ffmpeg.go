package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/halcyonv/prompt-video-generator/pkg/file"
	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

// QualityPreset bundles the encoding settings for one output quality.
// Every clip in a run is produced with the same preset, which is what
// makes concatenation's identical-codec precondition hold.
type QualityPreset struct {
	Width        int
	Height       int
	CRF          int
	Preset       string
	AudioBitrate string
}

var qualityPresets = map[string]QualityPreset{
	"low":    {Width: 854, Height: 480, CRF: 28, Preset: "fast", AudioBitrate: "96k"},
	"medium": {Width: 1280, Height: 720, CRF: 23, Preset: "medium", AudioBitrate: "128k"},
	"high":   {Width: 1920, Height: 1080, CRF: 20, Preset: "slow", AudioBitrate: "192k"},
}

const commandTimeout = 10 * time.Minute

// ErrTimeout marks a compositor subprocess that exceeded its deadline,
// distinct from an encoding failure.
var ErrTimeout = errors.New("media command timed out")

// FFmpeg drives ffmpeg/ffprobe subprocesses for combining, probing and
// concatenating media artifacts.
type FFmpeg struct {
	ffmpegCmd  string
	ffprobeCmd string
	quality    QualityPreset
}

// NewFFmpeg creates a compositor with the named quality preset.
func NewFFmpeg(quality string) (*FFmpeg, error) {
	preset, ok := qualityPresets[quality]
	if !ok {
		return nil, fmt.Errorf("unknown quality preset %q", quality)
	}

	return &FFmpeg{
		ffmpegCmd:  "ffmpeg",
		ffprobeCmd: "ffprobe",
		quality:    preset,
	}, nil
}

// Combine muxes one video track with one audio track into outputPath,
// trimming to the shorter stream.
func (f *FFmpeg) Combine(ctx context.Context, videoPath, audioPath, outputPath string) error {
	for _, path := range []string{videoPath, audioPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("combine input missing: %w", err)
		}
	}

	log.Debug("Combining %s + %s", filepath.Base(videoPath), filepath.Base(audioPath))
	return f.run(ctx, f.ffmpegCmd, f.combineArgs(videoPath, audioPath, outputPath))
}

// Concatenate joins clips, in order, into outputPath using the concat
// demuxer with stream copy. All clips must share codec and container;
// the compositor guarantees that for clips it produced itself, and a
// mismatch surfaces as the ffmpeg error verbatim.
func (f *FFmpeg) Concatenate(ctx context.Context, clips []string, outputPath string) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	listPath := file.ReplaceExt(outputPath, "txt")
	list := ""
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("failed to resolve clip path %s: %w", clip, err)
		}
		list += fmt.Sprintf("file '%s'\n", abs)
	}
	if err := os.WriteFile(listPath, []byte(list), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	log.Debug("Concatenating %d clips into %s", len(clips), filepath.Base(outputPath))
	return f.run(ctx, f.ffmpegCmd, f.concatArgs(listPath, outputPath))
}

// ProbeDuration returns the playable duration of a media file in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmdPath, err := exec.LookPath(f.ffprobeCmd)
	if err != nil {
		return 0, fmt.Errorf("%s not found: %w", f.ffprobeCmd, err)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cmdPath, f.probeArgs(path)...)
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: ffprobe %s", ErrTimeout, path)
		}
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var probeResult struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probeResult); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	duration, err := strconv.ParseFloat(probeResult.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned no duration for %s: %w", path, err)
	}

	return duration, nil
}

func (f *FFmpeg) run(ctx context.Context, name string, args []string) error {
	cmdPath, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cmdPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrTimeout, name)
		}
		return fmt.Errorf("%s failed: %w: %s", name, err, string(output))
	}
	return nil
}

func (f *FFmpeg) combineArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-loglevel", "warning",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-preset", f.quality.Preset,
		"-crf", strconv.Itoa(f.quality.CRF),
		"-vf", fmt.Sprintf("scale=%d:%d", f.quality.Width, f.quality.Height),
		"-c:a", "aac",
		"-b:a", f.quality.AudioBitrate,
		"-shortest",
		outputPath,
	}
}

func (f *FFmpeg) concatArgs(listPath, outputPath string) []string {
	return []string{
		"-y",
		"-loglevel", "warning",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
}

func (f *FFmpeg) probeArgs(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	}
}
