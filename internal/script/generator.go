package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/halcyonv/prompt-video-generator/internal/llm"
	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

// Generator turns a user prompt into a validated Script.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Script, error)
}

const generationSystemPrompt = `You are an expert educational video script writer.

Output a single valid JSON object with this structure:
{
  "title": "Video Title",
  "topic": "brief topic description",
  "acts": [
    {
      "id": "act_1_motivation",
      "narration": "The spoken narration text...",
      "visuals": [
        {
          "type": "equation|text|graph|animation|diagram",
          "content": "LaTeX for equations, text for overlays, a scene description for animations",
          "animation_style": "draw|fade|write|play",
          "position": "center|top|bottom|left|right",
          "duration": 2.0,
          "trigger_words": ["force"],
          "params": {}
        }
      ],
      "estimated_duration": 12.0,
      "purpose": "what this act accomplishes"
    }
  ],
  "source_prompt": "the original user prompt",
  "style_profile": "default"
}

Structure videos into 3-7 acts: motivation, concept, equation (if
applicable), examples, conclusion. Narration must be plain spoken prose.
Trigger words must be words that literally appear in the narration;
visuals synchronized to them appear as the word is spoken. Keep each
act's narration between one and four sentences.`

// LLMGenerator generates scripts with a single chat-completion call.
type LLMGenerator struct {
	client *llm.Client
}

func NewLLMGenerator(client *llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Generate makes one prompt-to-JSON call and decodes the result.
// The returned script is validated; a schema-invalid response is an error
// rather than a partially usable script.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (*Script, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is empty")
	}

	log.Info("Generating script for prompt: %s", prompt)

	raw, err := g.client.JSONChat(ctx, prompt, generationSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("script generation request failed: %w", err)
	}

	s, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	if s.SourcePrompt == "" {
		s.SourcePrompt = prompt
	}

	log.Info("Script generated: %q with %d acts", s.Title, len(s.Acts))
	return s, nil
}

// Decode parses a script JSON document, tolerating a fenced code block
// around the object, and validates it.
func Decode(raw string) (*Script, error) {
	cleaned := stripCodeFence(raw)

	var s Script
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return nil, fmt.Errorf("failed to parse script JSON: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("generated script is invalid: %w", err)
	}

	return &s, nil
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
// Some models wrap JSON output even when asked not to.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
