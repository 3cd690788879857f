package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func validScript() *Script {
	return &Script{
		Title: "Newton's First Law",
		Topic: "inertia",
		Acts: []Act{
			{
				ID:        "act_1_motivation",
				Narration: "Imagine a car that suddenly brakes.",
				Visuals: []VisualSpec{
					{Type: KindAnimation, Content: "car braking with passenger"},
				},
				EstimatedDuration: f(10),
			},
			{
				ID:        "act_2_equation",
				Narration: "Force equals mass times acceleration.",
				Visuals: []VisualSpec{
					{Type: KindEquation, Content: "F = ma", TriggerWords: []string{"force"}},
				},
			},
		},
		SourcePrompt: "teach Newton's first law",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validScript().Validate())
}

func TestValidate_NoActs(t *testing.T) {
	s := &Script{Title: "empty"}
	assert.Error(t, s.Validate())
}

func TestValidate_DuplicateActID(t *testing.T) {
	s := validScript()
	s.Acts[1].ID = s.Acts[0].ID
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate act id")
}

func TestValidate_UnsafeActID(t *testing.T) {
	// IDs become workspace filenames and ffmpeg concat entries; anything
	// that could escape the run directory or break quoting is rejected.
	for _, id := range []string{"../act1", "act/1", "act'1", "act 1", "act1\n"} {
		s := validScript()
		s.Acts[0].ID = id
		err := s.Validate()
		require.Error(t, err, id)
		assert.Contains(t, err.Error(), "unsafe id", id)
	}

	for _, id := range []string{"act1", "Act-1", "act_1_motivation"} {
		s := validScript()
		s.Acts[0].ID = id
		assert.NoError(t, s.Validate(), id)
	}
}

func TestValidate_EmptyNarration(t *testing.T) {
	s := validScript()
	s.Acts[0].Narration = "   "
	assert.Error(t, s.Validate())
}

func TestValidate_UnknownVisualKind(t *testing.T) {
	s := validScript()
	s.Acts[0].Visuals[0].Type = "hologram"
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestValidate_NonPositiveDuration(t *testing.T) {
	s := validScript()
	s.Acts[0].Visuals[0].Duration = f(0)
	assert.Error(t, s.Validate())
}

func TestEstimatedTotalDuration(t *testing.T) {
	s := validScript()
	// Only act 1 carries a hint.
	assert.InDelta(t, 10.0, s.EstimatedTotalDuration(), 1e-9)

	s.Acts[1].EstimatedDuration = f(5)
	assert.InDelta(t, 15.0, s.EstimatedTotalDuration(), 1e-9)
}
