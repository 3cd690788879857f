package audio

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/halcyonv/prompt-video-generator/internal/cache"
	"github.com/halcyonv/prompt-video-generator/internal/script"
	"github.com/halcyonv/prompt-video-generator/internal/style"
)

// Synthesizer produces one Segment per act, going through the synthesis
// cache so identical narration is synthesized at most once.
type Synthesizer struct {
	provider  Provider
	store     *cache.Store
	estimator *Estimator
	styleCfg  *style.Config
	selector  *VoiceSelector
	pauses    map[string]float64
}

func NewSynthesizer(provider Provider, store *cache.Store, styleCfg *style.Config) *Synthesizer {
	if styleCfg == nil {
		styleCfg = style.Default()
	}

	voices := make(map[language.Tag]string, len(styleCfg.Voice.Voices))
	for iso, voice := range styleCfg.Voice.Voices {
		voices[language.Make(iso)] = voice
	}

	pauses := styleCfg.Voice.PauseMarkers
	if len(pauses) == 0 {
		pauses = DefaultPauseMarkers()
	}

	return &Synthesizer{
		provider:  provider,
		store:     store,
		estimator: NewEstimator(NormalRate * styleCfg.Voice.Speed),
		styleCfg:  styleCfg,
		selector:  NewVoiceSelector(voices, styleCfg.Voice.VoiceID),
		pauses:    pauses,
	}
}

// Estimator exposes the synthesizer's estimator, configured for the
// style's speaking speed. The script stage uses it for planning hints.
func (s *Synthesizer) Estimator() *Estimator {
	return s.estimator
}

// SynthesizeAct produces audio for one act at outputPath.
//
// On cache miss the provider is called once; if it supplies no word
// timestamps they are estimated from the measured duration before
// caching, so the cache always carries timing metadata.
func (s *Synthesizer) SynthesizeAct(ctx context.Context, act script.Act, outputPath string) (*Segment, error) {
	voice := s.selector.Select(act.Narration)
	speed := s.styleCfg.Voice.Speed

	key := cache.KeyFor(act.Narration, voice, speed, s.provider.Name())

	entry, err := s.store.GetOrSynthesize(key, outputPath, func(destPath string) (*cache.Metadata, error) {
		result, err := s.provider.Synthesize(ctx, act.Narration, voice, speed, destPath)
		if err != nil {
			return nil, err
		}

		timestamps := result.WordTimestamps
		if timestamps == nil {
			timestamps, err = s.estimator.EstimateTimestamps(act.Narration, result.Duration, s.pauses)
			if err != nil {
				return nil, fmt.Errorf("failed to estimate timestamps for act %q: %w", act.ID, err)
			}
		}

		return &cache.Metadata{
			Duration:       result.Duration,
			WordTimestamps: toCacheWords(timestamps),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis failed for act %q: %w", act.ID, err)
	}

	return &Segment{
		ActID:          act.ID,
		AudioPath:      entry.AudioPath,
		Duration:       entry.Duration,
		WordTimestamps: fromCacheWords(entry.WordTimestamps),
		Provider:       s.provider.Name(),
		VoiceID:        voice,
	}, nil
}

func toCacheWords(timestamps []WordTimestamp) []cache.Word {
	if timestamps == nil {
		return nil
	}
	words := make([]cache.Word, len(timestamps))
	for i, ts := range timestamps {
		words[i] = cache.Word{Word: ts.Word, Start: ts.Start, End: ts.End}
	}
	return words
}

func fromCacheWords(words []cache.Word) []WordTimestamp {
	if words == nil {
		return nil
	}
	timestamps := make([]WordTimestamp, len(words))
	for i, w := range words {
		timestamps[i] = WordTimestamp{Word: w.Word, Start: w.Start, End: w.End}
	}
	return timestamps
}
