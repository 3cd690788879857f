package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScriptJSON = `{
  "title": "Newton's First Law",
  "topic": "inertia",
  "acts": [
    {
      "id": "act_1",
      "narration": "Why do moving objects keep moving?",
      "visuals": [
        {"type": "text", "content": "Newton's First Law", "position": "top"}
      ],
      "estimated_duration": 8.0
    }
  ],
  "source_prompt": "teach inertia"
}`

func TestDecode(t *testing.T) {
	s, err := Decode(sampleScriptJSON)
	require.NoError(t, err)

	assert.Equal(t, "Newton's First Law", s.Title)
	require.Len(t, s.Acts, 1)
	assert.Equal(t, "act_1", s.Acts[0].ID)
	require.NotNil(t, s.Acts[0].EstimatedDuration)
	assert.InDelta(t, 8.0, *s.Acts[0].EstimatedDuration, 1e-9)
}

func TestDecode_FencedJSON(t *testing.T) {
	fenced := "```json\n" + sampleScriptJSON + "\n```"
	s, err := Decode(fenced)
	require.NoError(t, err)
	assert.Equal(t, "inertia", s.Topic)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode("{not json")
	assert.Error(t, err)
}

func TestDecode_SchemaInvalid(t *testing.T) {
	// Parses but violates the script contract: empty narration.
	_, err := Decode(`{"title":"t","topic":"x","acts":[{"id":"a","narration":""}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestStripCodeFence_Passthrough(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
