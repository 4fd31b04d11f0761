package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// DefaultMaxSentences caps validated replies at three sentences to
// preserve terse in-character delivery.
const DefaultMaxSentences = 3

var (
	stageDirectionRe = regexp.MustCompile(`\[[^\]]*\]`)
	sentenceEndRe    = regexp.MustCompile(`([.!?]+)(\s+|$)`)
)

// ResponseValidator cleans, truncates, and sanity-checks raw backend
// output before it reaches a caller.
type ResponseValidator struct {
	maxSentences int
}

// NewResponseValidator creates a validator with the given sentence cap;
// zero means DefaultMaxSentences.
func NewResponseValidator(maxSentences int) *ResponseValidator {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &ResponseValidator{maxSentences: maxSentences}
}

// Validate strips generation scaffolding from rawText and truncates to
// the sentence cap. Output that is empty after cleaning, or a pure echo
// of userInput, fails with domain.ErrEmptyResponse - these are signals
// of generation failure, not valid dialogue.
func (v *ResponseValidator) Validate(rawText, expectedSpeaker, userInput string) (string, error) {
	logger.Section("Validation")
	logger.Debug("Raw output: %d chars", len(rawText))

	text := strings.TrimSpace(rawText)

	// Models frequently echo the speaker label before the line. Strip
	// only a leading label; a reply that merely mentions the name keeps
	// its opening and is cut at the mention below instead.
	text = strings.TrimPrefix(text, expectedSpeaker+":")

	// Cut where the model starts inventing the next user turn.
	for _, marker := range []string{"User:", "You:", expectedSpeaker + ":"} {
		if idx := strings.Index(text, marker); idx >= 0 {
			text = text[:idx]
		}
	}

	// First line only; later lines are runaway continuation.
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}

	text = stageDirectionRe.ReplaceAllString(text, "")
	text = strings.Trim(strings.TrimSpace(text), `"`)
	text = strings.TrimSpace(text)

	if text == "" {
		logger.Warn("Output empty after cleaning")
		return "", fmt.Errorf("%w: output empty after cleaning", domain.ErrEmptyResponse)
	}
	if normalise(text) == normalise(userInput) {
		logger.Warn("Output is a pure echo of the input")
		return "", fmt.Errorf("%w: output echoes the input", domain.ErrEmptyResponse)
	}

	text = v.truncateSentences(text)
	logger.Debug("Clean output: %q", text)
	return text, nil
}

// truncateSentences keeps at most maxSentences complete sentences.
func (v *ResponseValidator) truncateSentences(text string) string {
	ends := sentenceEndRe.FindAllStringIndex(text, -1)
	if len(ends) <= v.maxSentences {
		return text
	}
	cut := ends[v.maxSentences-1][1]
	return strings.TrimSpace(text[:cut])
}

// normalise lowercases and collapses whitespace for echo comparison.
func normalise(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
