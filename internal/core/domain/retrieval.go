package domain

import "strings"

// RetrievedExample pairs a corpus entry with its similarity score.
type RetrievedExample struct {
	// Entry is the matched corpus record.
	Entry DialogueEntry

	// Score is the normalised cosine similarity in [0, 1].
	Score float64
}

// RetrievalResult is an ordered sequence of scored entries, descending
// by score, at most the requested top-K long. An empty result is a
// valid outcome, never an error.
type RetrievalResult []RetrievedExample

// BestFor returns the highest-scoring example matching the supplied
// context and emotion tags. When no tags are supplied the top-ranked
// example qualifies; when tags are supplied and nothing matches, it
// returns false and the caller falls back to the persona default.
// The choice is deterministic - never a random pick.
func (r RetrievalResult) BestFor(contextTag string, emotionTag Mood) (RetrievedExample, bool) {
	if len(r) == 0 {
		return RetrievedExample{}, false
	}
	if contextTag == "" && emotionTag == MoodUnknown {
		return r[0], true
	}
	for _, ex := range r {
		if contextTag != "" && !strings.Contains(strings.ToLower(ex.Entry.SceneTag), strings.ToLower(contextTag)) {
			continue
		}
		if emotionTag != MoodUnknown && ex.Entry.Mood != emotionTag {
			continue
		}
		return ex, true
	}
	return RetrievedExample{}, false
}

// Responses returns the response texts in rank order.
func (r RetrievalResult) Responses() []string {
	out := make([]string, len(r))
	for i, ex := range r {
		out[i] = ex.Entry.ResponseText
	}
	return out
}

// GenerationRequest is a fully assembled, bounded prompt plus the
// generation parameters to hand to a backend. Created fresh per call,
// never reused.
type GenerationRequest struct {
	// Prompt is the assembled text ending with the unanswered turn.
	Prompt string

	// MaxTokens bounds the generated output length.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}
