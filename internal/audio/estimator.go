package audio

import (
	"fmt"
	"regexp"
)

// Speaking rates in words per minute.
const (
	SlowRate   = 120.0
	NormalRate = 150.0
	FastRate   = 180.0
)

// DefaultPauseMarkers maps punctuation to the silence (seconds) a TTS
// voice typically inserts after it.
func DefaultPauseMarkers() map[string]float64 {
	return map[string]float64{
		".": 0.5,
		",": 0.3,
		"?": 0.6,
		"!": 0.6,
		";": 0.4,
		":": 0.3,
	}
}

// A token is either a maximal run of word characters or a single
// punctuation mark from the recognized set. Everything else is a
// separator and never emitted. The word class is spelled out because
// RE2's \w is ASCII-only and narration is not.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+|[.,!?;:]`)

// Estimator produces word-level timing estimates when a TTS provider
// supplies none. This is uniform-pace estimation, not forced alignment.
type Estimator struct {
	speakingRate   float64
	wordsPerSecond float64
}

// NewEstimator creates an estimator for the given speaking rate in words
// per minute. Non-positive rates fall back to NormalRate.
func NewEstimator(speakingRate float64) *Estimator {
	if speakingRate <= 0 {
		speakingRate = NormalRate
	}
	return &Estimator{
		speakingRate:   speakingRate,
		wordsPerSecond: speakingRate / 60.0,
	}
}

// EstimateTimestamps distributes totalDuration across the words of text,
// charging each recognized punctuation mark its pause weight first and
// splitting the remaining speaking time uniformly per word.
//
// A text with no word tokens yields an empty list. totalDuration must be
// positive.
func (e *Estimator) EstimateTimestamps(text string, totalDuration float64, pauseMarkers map[string]float64) ([]WordTimestamp, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("total duration must be positive, got %v", totalDuration)
	}
	if pauseMarkers == nil {
		pauseMarkers = DefaultPauseMarkers()
	}

	tokens := tokenize(text)

	totalPause := 0.0
	wordCount := 0
	for _, token := range tokens {
		if pause, ok := pauseMarkers[token]; ok {
			totalPause += pause
		} else {
			wordCount++
		}
	}

	if wordCount == 0 {
		return nil, nil
	}

	speakingTime := totalDuration - totalPause
	timePerWord := speakingTime / float64(wordCount)

	timestamps := make([]WordTimestamp, 0, wordCount)
	currentTime := 0.0

	for _, token := range tokens {
		if pause, ok := pauseMarkers[token]; ok {
			currentTime += pause
			continue
		}

		timestamps = append(timestamps, WordTimestamp{
			Word:  token,
			Start: currentTime,
			End:   currentTime + timePerWord,
		})
		currentTime += timePerWord
	}

	return timestamps, nil
}

// EstimateDuration predicts how long text will take to speak at the
// configured rate, including punctuation pauses. Used for planning
// before any audio exists.
func (e *Estimator) EstimateDuration(text string, pauseMarkers map[string]float64) float64 {
	if pauseMarkers == nil {
		pauseMarkers = DefaultPauseMarkers()
	}

	tokens := tokenize(text)

	wordCount := 0
	pauseTime := 0.0
	for _, token := range tokens {
		if pause, ok := pauseMarkers[token]; ok {
			pauseTime += pause
		} else {
			wordCount++
		}
	}

	return float64(wordCount)/e.wordsPerSecond + pauseTime
}

// AdjustTimingForSync rescales timestamps linearly so the final end time
// equals targetDuration exactly. Used when the synthesized audio's
// measured duration diverges from the estimate the timestamps were built
// from.
func AdjustTimingForSync(timestamps []WordTimestamp, targetDuration float64) ([]WordTimestamp, error) {
	if len(timestamps) == 0 {
		return nil, nil
	}
	if targetDuration <= 0 {
		return nil, fmt.Errorf("target duration must be positive, got %v", targetDuration)
	}

	currentDuration := timestamps[len(timestamps)-1].End
	if currentDuration <= 0 {
		return nil, fmt.Errorf("timestamps end at %v, cannot rescale", currentDuration)
	}

	scale := targetDuration / currentDuration

	adjusted := make([]WordTimestamp, len(timestamps))
	for i, ts := range timestamps {
		adjusted[i] = WordTimestamp{
			Word:  ts.Word,
			Start: ts.Start * scale,
			End:   ts.End * scale,
		}
	}

	return adjusted, nil
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}
