package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type EnqueueRequest struct {
	Source    string
	DedupeKey string
	Payload   JobPayload
}

type JobPayload struct {
	Prompt      string `json:"prompt"`
	StylePreset string `json:"style_preset"`
	RunID       string `json:"run_id,omitempty"`
}

// JobResult captures the outcome of a successful run.
type JobResult struct {
	VideoPath string  `json:"video_path"`
	Duration  float64 `json:"duration"`
	ActCount  int     `json:"act_count"`
	Workspace string  `json:"workspace"`
}

type GenerationJob struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	DedupeKey string     `json:"dedupe_key"`
	Payload   JobPayload `json:"payload"`
	Status    Status     `json:"status"`
	Result    *JobResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DedupeKeyFor keys a job by what it would produce, so the same prompt
// with the same style is not queued twice while one is in flight.
func DedupeKeyFor(prompt, stylePreset string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write([]byte(stylePreset))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
