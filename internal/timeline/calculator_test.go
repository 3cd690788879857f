package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonv/prompt-video-generator/internal/audio"
	"github.com/halcyonv/prompt-video-generator/internal/script"
)

func f(v float64) *float64 { return &v }

func segment(duration float64, words ...audio.WordTimestamp) *audio.Segment {
	return &audio.Segment{
		ActID:          "act_1",
		AudioPath:      "act_1.mp3",
		Duration:       duration,
		WordTimestamps: words,
		Provider:       "fake",
	}
}

func TestCalculate_Empty(t *testing.T) {
	c := NewCalculator(0)
	points, err := c.Calculate(nil, segment(5), 0)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestCalculate_SequentialEqualDivision(t *testing.T) {
	c := NewCalculator(0)

	// No audio: explicit 2.0s first, equal-division 6.0/2 = 3.0s second.
	visuals := []script.VisualSpec{
		{Type: script.KindText, Content: "a", Duration: f(2.0)},
		{Type: script.KindText, Content: "b"},
	}

	points, err := c.Calculate(visuals, nil, 6.0)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.InDelta(t, 0.0, points[0].Start, 1e-9)
	assert.InDelta(t, 2.0, points[0].Duration, 1e-9)
	assert.InDelta(t, 2.0, points[1].Start, 1e-9)
	assert.InDelta(t, 3.0, points[1].Duration, 1e-9)
}

func TestCalculate_TriggerMatch(t *testing.T) {
	c := NewCalculator(0)

	seg := segment(10,
		audio.WordTimestamp{Word: "A", Start: 0, End: 1},
		audio.WordTimestamp{Word: "force", Start: 3, End: 3.5},
		audio.WordTimestamp{Word: "acts", Start: 3.5, End: 4},
	)

	visuals := []script.VisualSpec{
		{Type: script.KindEquation, Content: "F = ma", TriggerWords: []string{"Force"}},
	}

	points, err := c.Calculate(visuals, seg, 0)
	require.NoError(t, err)
	require.Len(t, points, 1)

	// Default 0.5s lead before the trigger word.
	assert.InDelta(t, 2.5, points[0].Start, 1e-9)
	assert.Equal(t, "force", points[0].TriggerWord)
	require.NotNil(t, points[0].TriggerTime)
	assert.InDelta(t, 3.0, *points[0].TriggerTime, 1e-9)
	assert.InDelta(t, 10.0, points[0].Duration, 1e-9)
}

func TestCalculate_LeadTimeOverrideAndClamp(t *testing.T) {
	c := NewCalculator(0)

	seg := segment(8, audio.WordTimestamp{Word: "mass", Start: 0.2, End: 0.6})

	visuals := []script.VisualSpec{
		{Type: script.KindText, Content: "m", TriggerWords: []string{"mass"}, LeadTime: f(2.0)},
	}

	points, err := c.Calculate(visuals, seg, 0)
	require.NoError(t, err)
	// 0.2 - 2.0 clamps to zero, never negative.
	assert.InDelta(t, 0.0, points[0].Start, 1e-9)
}

func TestCalculate_SharedTriggerClaimedOnce(t *testing.T) {
	c := NewCalculator(0)

	seg := segment(10, audio.WordTimestamp{Word: "energy", Start: 4, End: 4.5})

	visuals := []script.VisualSpec{
		{Type: script.KindText, Content: "a", TriggerWords: []string{"energy"}},
		{Type: script.KindText, Content: "b", TriggerWords: []string{"energy"}},
	}

	points, err := c.Calculate(visuals, seg, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Exactly one visual claims the single occurrence.
	assert.Equal(t, "energy", points[0].TriggerWord)
	assert.InDelta(t, 3.5, points[0].Start, 1e-9)

	// The other degrades to sequential placement after the first.
	assert.Empty(t, points[1].TriggerWord)
	assert.Nil(t, points[1].TriggerTime)
	assert.InDelta(t, 8.5, points[1].Start, 1e-9)
}

func TestCalculate_NoMatchFallsBackSequential(t *testing.T) {
	c := NewCalculator(0)

	seg := segment(6, audio.WordTimestamp{Word: "hello", Start: 1, End: 2})

	visuals := []script.VisualSpec{
		{Type: script.KindText, Content: "a", TriggerWords: []string{"nonexistent"}},
		{Type: script.KindText, Content: "b"},
	}

	points, err := c.Calculate(visuals, seg, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.InDelta(t, 0.0, points[0].Start, 1e-9)
	assert.InDelta(t, 3.0, points[0].Duration, 1e-9)
	assert.InDelta(t, 3.0, points[1].Start, 1e-9)
}

func TestCalculate_MatchedPushesRunningClock(t *testing.T) {
	c := NewCalculator(0)

	seg := segment(20, audio.WordTimestamp{Word: "later", Start: 12, End: 12.5})

	visuals := []script.VisualSpec{
		{Type: script.KindText, Content: "a", TriggerWords: []string{"later"}, Duration: f(3)},
		{Type: script.KindText, Content: "b", Duration: f(2)},
	}

	points, err := c.Calculate(visuals, seg, 0)
	require.NoError(t, err)

	// First visual jumped to 11.5; the sequential one starts after its
	// window, not back at zero.
	assert.InDelta(t, 11.5, points[0].Start, 1e-9)
	assert.InDelta(t, 14.5, points[1].Start, 1e-9)
}

func TestCalculate_StartsNonDecreasing(t *testing.T) {
	c := NewCalculator(0)

	// Second visual's trigger occurs before the first visual's window.
	seg := segment(20,
		audio.WordTimestamp{Word: "early", Start: 1, End: 1.5},
		audio.WordTimestamp{Word: "late", Start: 15, End: 15.5},
	)

	visuals := []script.VisualSpec{
		{Type: script.KindText, Content: "a", TriggerWords: []string{"late"}, Duration: f(2)},
		{Type: script.KindText, Content: "b", TriggerWords: []string{"early"}, Duration: f(2)},
		{Type: script.KindText, Content: "c", Duration: f(2)},
	}

	points, err := c.Calculate(visuals, seg, 0)
	require.NoError(t, err)
	require.Len(t, points, 3)

	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].Start, points[i-1].Start)
	}
	for _, p := range points {
		assert.Greater(t, p.Duration, 0.0)
	}
}

func TestCalculate_OnePointPerVisual(t *testing.T) {
	c := NewCalculator(0)

	visuals := make([]script.VisualSpec, 5)
	for i := range visuals {
		visuals[i] = script.VisualSpec{Type: script.KindText, Content: "x"}
	}

	points, err := c.Calculate(visuals, segment(10), 0)
	require.NoError(t, err)
	require.Len(t, points, 5)
	for i, p := range points {
		assert.Equal(t, i, p.VisualIndex)
		assert.InDelta(t, 2.0, p.Duration, 1e-9)
	}
}

func TestCalculate_InvalidFallback(t *testing.T) {
	c := NewCalculator(0)
	_, err := c.Calculate([]script.VisualSpec{{Type: script.KindText, Content: "x"}}, nil, 0)
	assert.Error(t, err)
}
