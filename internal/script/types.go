package script

import (
	"fmt"
	"regexp"
	"strings"
)

// Act IDs become filenames inside the run workspace, so they are held
// to a filesystem-safe charset.
var actIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// VisualKind identifies how a visual's content payload is interpreted by
// the rendering engine.
type VisualKind string

const (
	KindEquation  VisualKind = "equation"
	KindText      VisualKind = "text"
	KindGraph     VisualKind = "graph"
	KindAnimation VisualKind = "animation"
	KindDiagram   VisualKind = "diagram"
)

var validKinds = map[VisualKind]bool{
	KindEquation:  true,
	KindText:      true,
	KindGraph:     true,
	KindAnimation: true,
	KindDiagram:   true,
}

// VisualSpec is a declarative description of one on-screen element.
// It describes WHAT to show; the rendering engine decides how.
//
// Duration, TriggerWords and LeadTime are optional timing hints consumed
// by the timeline calculator. A nil Duration means "derive at sync time";
// a nil LeadTime means the calculator default.
type VisualSpec struct {
	Type           VisualKind        `json:"type"`
	Content        string            `json:"content"`
	AnimationStyle string            `json:"animation_style,omitempty"`
	Duration       *float64          `json:"duration,omitempty"`
	TriggerWords   []string          `json:"trigger_words,omitempty"`
	LeadTime       *float64          `json:"lead_time,omitempty"`
	Position       string            `json:"position,omitempty"`
	Params         map[string]string `json:"params,omitempty"`
}

// Act is one narrated segment of the video. Acts are immutable once
// generated; iteration happens by editing the persisted script.json.
type Act struct {
	ID        string       `json:"id"`
	Narration string       `json:"narration"`
	Visuals   []VisualSpec `json:"visuals"`

	// Planning hint only. Superseded by the measured audio duration
	// once synthesis succeeds.
	EstimatedDuration *float64 `json:"estimated_duration,omitempty"`

	Purpose string `json:"purpose,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Script is the complete ordered act list plus generation metadata.
// This is the main artifact of the script stage and is user-editable JSON.
type Script struct {
	Title        string `json:"title"`
	Topic        string `json:"topic"`
	Acts         []Act  `json:"acts"`
	SourcePrompt string `json:"source_prompt"`
	StyleProfile string `json:"style_profile,omitempty"`
}

// EstimatedTotalDuration sums the planning hints of acts that carry one.
func (s *Script) EstimatedTotalDuration() float64 {
	total := 0.0
	for _, act := range s.Acts {
		if act.EstimatedDuration != nil {
			total += *act.EstimatedDuration
		}
	}
	return total
}

// Validate enforces the script-source output contract: at least one act,
// unique non-empty act IDs, non-empty narration, and known visual kinds.
func (s *Script) Validate() error {
	if len(s.Acts) == 0 {
		return fmt.Errorf("script has no acts")
	}

	seen := make(map[string]bool, len(s.Acts))
	for i, act := range s.Acts {
		if strings.TrimSpace(act.ID) == "" {
			return fmt.Errorf("act %d has an empty id", i)
		}
		if !actIDPattern.MatchString(act.ID) {
			return fmt.Errorf("act %d has unsafe id %q, want letters, digits, hyphen or underscore", i, act.ID)
		}
		if seen[act.ID] {
			return fmt.Errorf("duplicate act id %q", act.ID)
		}
		seen[act.ID] = true

		if strings.TrimSpace(act.Narration) == "" {
			return fmt.Errorf("act %q has empty narration", act.ID)
		}

		for j, v := range act.Visuals {
			if !validKinds[v.Type] {
				return fmt.Errorf("act %q visual %d has unknown type %q", act.ID, j, v.Type)
			}
			if strings.TrimSpace(v.Content) == "" {
				return fmt.Errorf("act %q visual %d has empty content", act.ID, j)
			}
			if v.Duration != nil && *v.Duration <= 0 {
				return fmt.Errorf("act %q visual %d has non-positive duration", act.ID, j)
			}
			if v.LeadTime != nil && *v.LeadTime < 0 {
				return fmt.Errorf("act %q visual %d has negative lead time", act.ID, j)
			}
		}
	}

	return nil
}
