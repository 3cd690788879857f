package pipeline

import (
	"errors"
	"fmt"
)

// Stage names one phase of a generation run.
type Stage string

const (
	StageScript   Stage = "script"
	StageAudio    Stage = "audio"
	StageVisuals  Stage = "visuals"
	StageAssembly Stage = "assembly"
)

// StageError wraps a stage failure with the identity of the failing
// stage and the run's workspace path, so every failure is traceable to
// (which stage, which act, where artifacts were left).
type StageError struct {
	Stage     Stage
	ActID     string
	Workspace string
	Cause     error
}

func (e *StageError) Error() string {
	if e.ActID != "" {
		return fmt.Sprintf("stage %s failed on act %s (workspace: %s): %v", e.Stage, e.ActID, e.Workspace, e.Cause)
	}
	return fmt.Sprintf("stage %s failed (workspace: %s): %v", e.Stage, e.Workspace, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// FailedStage extracts the stage from err, if it is a stage failure.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
