package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Category classifies how a corpus entry was recorded.
type Category string

// Available entry categories.
const (
	// CategoryExchange is a conversational pair: something was said to
	// the character, and the entry records the character's reply.
	CategoryExchange Category = "exchange"

	// CategoryStandalone is a line with no prompt side (greeting, idle
	// remark, scene comment).
	CategoryStandalone Category = "standalone"
)

// Mood is a coarse emotional tag extracted from free-text annotations.
// It is a best-effort hint, never a required field.
type Mood string

// Recognised moods. MoodUnknown means no keyword matched.
const (
	MoodUnknown     Mood = ""
	MoodHappy       Mood = "happy"
	MoodStern       Mood = "stern"
	MoodSad         Mood = "sad"
	MoodSurprised   Mood = "surprised"
	MoodQuestioning Mood = "questioning"
	MoodConfident   Mood = "confident"
	MoodTired       Mood = "tired"
	MoodPleading    Mood = "pleading"
)

// moodKeywords maps annotation keywords to moods. The vocabulary is
// deliberately small and fixed; it is a keyword scan, not a classifier.
var moodKeywords = []struct {
	mood     Mood
	keywords []string
}{
	{MoodHappy, []string{"happy", "amused", "cheerful"}},
	{MoodStern, []string{"stern", "angry", "irritated"}},
	{MoodSad, []string{"sad", "somber", "melancholic"}},
	{MoodSurprised, []string{"surprised", "shocked"}},
	{MoodQuestioning, []string{"question", "puzzled", "confused"}},
	{MoodConfident, []string{"confident", "determined"}},
	{MoodTired, []string{"tired", "weary"}},
	{MoodPleading, []string{"pleading", "desperate"}},
}

// ParseMood scans a free-text annotation for mood keywords.
// Returns MoodUnknown when nothing matches; false negatives are
// expected and acceptable.
func ParseMood(annotation string) Mood {
	if annotation == "" {
		return MoodUnknown
	}
	lower := strings.ToLower(annotation)
	for _, entry := range moodKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.mood
			}
		}
	}
	return MoodUnknown
}

// DialogueEntry is one corpus record: a line the character delivered,
// optionally paired with the utterance that provoked it.
// Entries are immutable once loaded.
type DialogueEntry struct {
	// ID is the stable, unique identifier within the corpus.
	ID string

	// PromptText is what was said to the character. Empty for
	// standalone lines.
	PromptText string

	// ResponseText is the character's own line. Never empty.
	ResponseText string

	// Mood is the emotional tag scanned from the annotation column.
	Mood Mood

	// SceneTag is a free-text locale/scene identifier, may be empty.
	SceneTag string

	// Category distinguishes conversational pairs from standalone lines.
	Category Category
}

// EmbeddingText returns the text the index embeds for this entry:
// the prompt side when present, the response otherwise. Retrieval
// matches on what was said TO the character, not on the character's
// own wording.
func (e DialogueEntry) EmbeddingText() string {
	if e.PromptText != "" {
		return e.PromptText
	}
	return e.ResponseText
}

// Validate reports whether the entry satisfies the corpus invariants.
func (e DialogueEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: entry has no id", ErrCorpusFormat)
	}
	if strings.TrimSpace(e.ResponseText) == "" {
		return fmt.Errorf("%w: entry %s has empty response text", ErrCorpusFormat, e.ID)
	}
	return nil
}

// Fingerprint computes a content fingerprint over an ordered entry set.
// The embedding index is keyed to this value; any mismatch means the
// persisted index is stale and must be rebuilt, never patched.
func Fingerprint(entries []DialogueEntry) string {
	h := sha256.New()
	fmt.Fprintf(h, "n=%d\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1e", e.ID, e.PromptText, e.ResponseText)
	}
	return hex.EncodeToString(h.Sum(nil))
}
