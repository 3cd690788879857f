package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonv/prompt-video-generator/internal/cache"
	"github.com/halcyonv/prompt-video-generator/internal/script"
	"github.com/halcyonv/prompt-video-generator/internal/style"
)

// fakeProvider writes a deterministic artifact and counts calls.
type fakeProvider struct {
	calls      int
	duration   float64
	timestamps []WordTimestamp
	err        error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Synthesize(_ context.Context, text, voice string, speed float64, outputPath string) (*SynthesisResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if err := os.WriteFile(outputPath, []byte("audio:"+text), 0644); err != nil {
		return nil, err
	}
	return &SynthesisResult{
		AudioPath:      outputPath,
		Duration:       p.duration,
		WordTimestamps: p.timestamps,
	}, nil
}

func newTestSynthesizer(t *testing.T, p Provider) *Synthesizer {
	t.Helper()
	store, err := cache.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return NewSynthesizer(p, store, style.Default())
}

func TestSynthesizeAct_EstimatesWhenProviderGivesNoTimestamps(t *testing.T) {
	p := &fakeProvider{duration: 4.0}
	s := newTestSynthesizer(t, p)

	act := script.Act{ID: "act_1", Narration: "Stop. Go now!"}
	seg, err := s.SynthesizeAct(context.Background(), act, filepath.Join(t.TempDir(), "a.mp3"))
	require.NoError(t, err)

	assert.Equal(t, "act_1", seg.ActID)
	assert.InDelta(t, 4.0, seg.Duration, 1e-9)
	assert.Equal(t, "fake", seg.Provider)

	// Estimated fallback timestamps: three words.
	require.Len(t, seg.WordTimestamps, 3)
	assert.Equal(t, "Stop", seg.WordTimestamps[0].Word)
	assert.InDelta(t, 0.0, seg.WordTimestamps[0].Start, 1e-9)
	assert.InDelta(t, 3.4, seg.WordTimestamps[2].End, 1e-6)
}

func TestSynthesizeAct_KeepsProviderTimestamps(t *testing.T) {
	given := []WordTimestamp{{Word: "hi", Start: 0, End: 1.5}}
	p := &fakeProvider{duration: 1.5, timestamps: given}
	s := newTestSynthesizer(t, p)

	seg, err := s.SynthesizeAct(context.Background(), script.Act{ID: "a", Narration: "hi"}, filepath.Join(t.TempDir(), "a.mp3"))
	require.NoError(t, err)
	assert.Equal(t, given, seg.WordTimestamps)
}

func TestSynthesizeAct_CacheHitSkipsProvider(t *testing.T) {
	p := &fakeProvider{duration: 2.0}
	s := newTestSynthesizer(t, p)
	act := script.Act{ID: "a", Narration: "same narration"}

	_, err := s.SynthesizeAct(context.Background(), act, filepath.Join(t.TempDir(), "first.mp3"))
	require.NoError(t, err)
	require.Equal(t, 1, p.calls)

	seg, err := s.SynthesizeAct(context.Background(), act, filepath.Join(t.TempDir(), "second.mp3"))
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls, "cached act must not be re-synthesized")
	assert.InDelta(t, 2.0, seg.Duration, 1e-9)
}

func TestSynthesizeAct_ProviderFailure(t *testing.T) {
	p := &fakeProvider{err: os.ErrPermission}
	s := newTestSynthesizer(t, p)

	_, err := s.SynthesizeAct(context.Background(), script.Act{ID: "a", Narration: "boom"}, filepath.Join(t.TempDir(), "a.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `act "a"`)
}
