package style

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, "alloy", cfg.Voice.VoiceID)
	assert.InDelta(t, 1.0, cfg.Voice.Speed, 1e-9)
	assert.Equal(t, "medium", cfg.Video.Quality)
}

func TestLoadPreset_DefaultSkipsDisk(t *testing.T) {
	cfg, err := LoadPreset("/nonexistent", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Name)

	cfg, err = LoadPreset("/nonexistent", "")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Name)
}

func TestLoadPreset_FromFile(t *testing.T) {
	dir := t.TempDir()
	preset := `
voice:
  voice_id: nova
  speed: 1.2
  voices:
    en: nova
    zh: zh-CN-XiaoxiaoNeural
  pause_markers:
    ".": 0.4
video:
  quality: high
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "energetic.yaml"), []byte(preset), 0644))

	cfg, err := LoadPreset(dir, "energetic")
	require.NoError(t, err)

	assert.Equal(t, "energetic", cfg.Name)
	assert.Equal(t, "nova", cfg.Voice.VoiceID)
	assert.InDelta(t, 1.2, cfg.Voice.Speed, 1e-9)
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", cfg.Voice.Voices["zh"])
	assert.InDelta(t, 0.4, cfg.Voice.PauseMarkers["."], 1e-9)
	assert.Equal(t, "high", cfg.Video.Quality)
	// Unset fields inherit defaults.
	assert.Equal(t, "#0e1117", cfg.Video.BackgroundColor)
}

func TestLoadPreset_Missing(t *testing.T) {
	_, err := LoadPreset(t.TempDir(), "nope")
	assert.Error(t, err)
}

func TestLoadPreset_BadSpeed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("voice:\n  speed: -1\n"), 0644))
	_, err := LoadPreset(dir, "broken")
	assert.Error(t, err)
}
