package audio

import (
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// VoiceSelector picks a voice for a narration by detected language.
// An explicit style voice always wins; the selector only fills the gap
// when no voice is configured.
type VoiceSelector struct {
	voices       map[language.Tag]string
	defaultVoice string
}

// NewVoiceSelector builds a selector from a language→voice table.
// defaultVoice is used when detection fails or the language is unmapped.
func NewVoiceSelector(voices map[language.Tag]string, defaultVoice string) *VoiceSelector {
	if voices == nil {
		voices = map[language.Tag]string{}
	}
	return &VoiceSelector{
		voices:       voices,
		defaultVoice: defaultVoice,
	}
}

// Select returns the voice for text's detected language.
func (s *VoiceSelector) Select(text string) string {
	if len(s.voices) == 0 {
		return s.defaultVoice
	}

	iso := whatlanggo.DetectLang(text).Iso6391()
	if iso == "" {
		return s.defaultVoice
	}

	tag := language.Make(iso)
	if voice, ok := s.voices[tag]; ok {
		return voice
	}

	// Fall back through the tag's parent chain, e.g. zh-Hans → zh.
	for parent := tag.Parent(); parent != language.Und; parent = parent.Parent() {
		if voice, ok := s.voices[parent]; ok {
			return voice
		}
	}

	return s.defaultVoice
}
