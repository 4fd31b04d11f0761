package domain

import (
	"fmt"
	"strings"
)

// DefaultToneTag is the situational tag used when a requested context
// tag has no configured tone instruction.
const DefaultToneTag = "casual"

// PersonaProfile is the static character-voice configuration.
// Loaded once, read-only for the process lifetime.
type PersonaProfile struct {
	// Name is the character's display name, used as the speaker label
	// in assembled prompts and for echo detection in validation.
	Name string

	// Style describes the speaking voice, included verbatim in every
	// assembled prompt.
	Style string

	// Examples are canonical lines in the character's voice, used as
	// worked examples when retrieval comes back empty.
	Examples []string

	// Tones maps situational context tags (e.g. "investigation",
	// "combat", "casual") to tone-modifying instructions.
	Tones map[string]string

	// EmotionModifiers maps emotion tags to short instruction suffixes
	// appended to the situational tone.
	EmotionModifiers map[string]string

	// FallbackLine is the in-character placeholder returned when
	// generation fails and no retrieved example qualifies.
	FallbackLine string
}

// ToneFor returns the tone instruction for a context tag, falling back
// to the generic casual tone when the tag is unrecognised.
func (p PersonaProfile) ToneFor(contextTag string) string {
	if tone, ok := p.Tones[strings.ToLower(contextTag)]; ok {
		return tone
	}
	return p.Tones[DefaultToneTag]
}

// EmotionModifier returns the instruction suffix for an emotion tag,
// or empty when the tag is unknown or unset.
func (p PersonaProfile) EmotionModifier(emotionTag string) string {
	if emotionTag == "" {
		return ""
	}
	return p.EmotionModifiers[strings.ToLower(emotionTag)]
}

// Validate reports whether the profile is usable.
func (p PersonaProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: persona has no name", ErrPersonaUnavailable)
	}
	if strings.TrimSpace(p.Style) == "" {
		return fmt.Errorf("%w: persona %q has no style description", ErrPersonaUnavailable, p.Name)
	}
	if len(p.Examples) == 0 {
		return fmt.Errorf("%w: persona %q has no canonical examples", ErrPersonaUnavailable, p.Name)
	}
	if strings.TrimSpace(p.FallbackLine) == "" {
		return fmt.Errorf("%w: persona %q has no fallback line", ErrPersonaUnavailable, p.Name)
	}
	return nil
}
