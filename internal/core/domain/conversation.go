package domain

// DefaultMaxTurns caps conversation history at three exchanges.
const DefaultMaxTurns = 6

// Turn is a single utterance in a conversation.
type Turn struct {
	// Speaker is who said it ("You" or the persona name).
	Speaker string

	// Text is what was said.
	Text string
}

// ConversationState is the ordered turn history for one session.
// It is owned exclusively by the caller: the engine reads a bounded
// window and appends nothing itself - the caller commits new turns
// after receiving a validated response.
type ConversationState struct {
	// SessionID identifies the conversation.
	SessionID string

	// MaxTurns caps the retained history; zero means DefaultMaxTurns.
	MaxTurns int

	// Turns is the history in chronological order, oldest first.
	Turns []Turn
}

// NewConversationState creates an empty state for a session.
func NewConversationState(sessionID string) *ConversationState {
	return &ConversationState{SessionID: sessionID}
}

// cap returns the effective turn limit.
func (s *ConversationState) cap() int {
	if s.MaxTurns > 0 {
		return s.MaxTurns
	}
	return DefaultMaxTurns
}

// Append commits a turn, discarding the oldest turns beyond the cap.
func (s *ConversationState) Append(speaker, text string) {
	s.Turns = append(s.Turns, Turn{Speaker: speaker, Text: text})
	if over := len(s.Turns) - s.cap(); over > 0 {
		s.Turns = s.Turns[over:]
	}
}

// Window returns up to n most recent turns in chronological order.
// The returned slice aliases the state and must not be mutated.
func (s *ConversationState) Window(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if n > len(s.Turns) {
		n = len(s.Turns)
	}
	return s.Turns[len(s.Turns)-n:]
}
