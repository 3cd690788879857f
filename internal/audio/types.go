package audio

// WordTimestamp is one spoken word's position in an audio track.
// start is ≥ 0 and end > start; lists are ordered by non-decreasing start.
type WordTimestamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is the synthesized audio for one act.
//
// Duration is authoritative: it is always measured from the produced
// artifact, never estimated, once synthesis succeeds. WordTimestamps may
// be nil when the provider supplies none and estimation was skipped.
// A Segment is created by the synthesis stage and read-only afterwards.
type Segment struct {
	ActID          string          `json:"act_id"`
	AudioPath      string          `json:"audio_path"`
	Duration       float64         `json:"duration"`
	WordTimestamps []WordTimestamp `json:"word_timestamps,omitempty"`
	Provider       string          `json:"provider"`
	VoiceID        string          `json:"voice_id,omitempty"`
}

// SynthesisResult is what a TTS provider hands back for one narration.
type SynthesisResult struct {
	AudioPath      string
	Duration       float64
	WordTimestamps []WordTimestamp
}
