package pipeline

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	slugMaxWords = 4
	slugMaxLen   = 32
)

// NewRunID derives a filesystem-safe run identifier from the prompt.
// The slug keeps runs recognizable in the workspace listing, the
// timestamp orders them, and the uuid fragment keeps identical
// prompts from colliding.
func NewRunID(prompt string) string {
	slug := slugify(prompt)
	if slug == "" {
		slug = "run"
	}
	stamp := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("%s_%s_%s", slug, stamp, uuid.NewString()[:8])
}

func slugify(s string) string {
	var b strings.Builder
	words := 0
	inWord := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				if words == slugMaxWords {
					return b.String()
				}
				if words > 0 {
					b.WriteByte('-')
				}
				words++
				inWord = true
			}
			if b.Len() >= slugMaxLen {
				return b.String()
			}
			b.WriteRune(r)
		default:
			inWord = false
		}
	}
	return b.String()
}
