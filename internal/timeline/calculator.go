package timeline

import (
	"fmt"
	"strings"

	"github.com/halcyonv/prompt-video-generator/internal/audio"
	"github.com/halcyonv/prompt-video-generator/internal/script"
	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

// DefaultLeadTime is how many seconds a visual appears before its
// matched trigger word when the visual sets no lead time of its own.
const DefaultLeadTime = 0.5

// SyncPoint is the resolved placement of one visual on an act's
// timeline. Times are seconds relative to the act start.
type SyncPoint struct {
	VisualIndex int      `json:"visual_index"`
	Start       float64  `json:"start"`
	Duration    float64  `json:"duration"`
	TriggerWord string   `json:"trigger_word,omitempty"`
	TriggerTime *float64 `json:"trigger_time,omitempty"`
}

// Calculator resolves each visual's independent timing claim (trigger
// words, explicit duration, lead time) into one consistent timeline.
type Calculator struct {
	defaultLeadTime float64
}

func NewCalculator(defaultLeadTime float64) *Calculator {
	if defaultLeadTime <= 0 {
		defaultLeadTime = DefaultLeadTime
	}
	return &Calculator{defaultLeadTime: defaultLeadTime}
}

// Calculate produces one SyncPoint per visual, in input order.
//
// A visual with trigger words is anchored to the first unclaimed
// occurrence of one of its words in the audio timestamps; everything
// else is placed sequentially behind a running clock. The clock advances
// after every placement, matched or not, so a later sequential visual is
// never scheduled inside an earlier matched visual's window. Absence of
// a match is never an error.
//
// seg may be nil (no audio yet); fallbackDuration then supplies the act
// length and must be positive.
func (c *Calculator) Calculate(visuals []script.VisualSpec, seg *audio.Segment, fallbackDuration float64) ([]SyncPoint, error) {
	if len(visuals) == 0 {
		return nil, nil
	}

	var timestamps []audio.WordTimestamp
	var targetDuration float64
	if seg != nil {
		timestamps = seg.WordTimestamps
		targetDuration = seg.Duration
	} else {
		targetDuration = fallbackDuration
	}
	if targetDuration <= 0 {
		return nil, fmt.Errorf("target duration must be positive, got %v", targetDuration)
	}

	points := make([]SyncPoint, 0, len(visuals))
	claimed := make(map[float64]bool)
	runningClock := 0.0
	lastStart := 0.0

	for i, visual := range visuals {
		point := SyncPoint{VisualIndex: i}

		if len(visual.TriggerWords) > 0 && len(timestamps) > 0 {
			if word, at, ok := findTrigger(visual.TriggerWords, timestamps, claimed); ok {
				claimed[at] = true
				lead := c.defaultLeadTime
				if visual.LeadTime != nil {
					lead = *visual.LeadTime
				}
				t := at
				point.TriggerWord = word
				point.TriggerTime = &t
				point.Start = max(0, at-lead)
				log.Debug("Visual %d matched trigger %q at %.2fs", i, word, at)
			}
		}

		if point.TriggerTime == nil {
			point.Start = runningClock
		}

		// Matched visuals may jump ahead but never behind an earlier
		// placement; starts stay non-decreasing.
		if point.Start < lastStart {
			point.Start = lastStart
		}

		if visual.Duration != nil {
			point.Duration = *visual.Duration
		} else {
			point.Duration = targetDuration / float64(len(visuals))
		}

		points = append(points, point)
		runningClock = point.Start + point.Duration
		lastStart = point.Start
	}

	return points, nil
}

// findTrigger scans timestamps in order for the first word in the
// trigger set whose start time has not been claimed by an earlier
// visual. Matching is case-insensitive and exact.
func findTrigger(triggerWords []string, timestamps []audio.WordTimestamp, claimed map[float64]bool) (string, float64, bool) {
	set := make(map[string]bool, len(triggerWords))
	for _, w := range triggerWords {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}

	for _, ts := range timestamps {
		word := strings.ToLower(strings.TrimSpace(ts.Word))
		if set[word] && !claimed[ts.Start] {
			return word, ts.Start, true
		}
	}
	return "", 0, false
}
