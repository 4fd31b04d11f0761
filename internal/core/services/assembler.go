package services

import (
	"fmt"
	"strings"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// Default prompt assembly parameters.
const (
	DefaultMaxPromptChars = 4000
	DefaultMaxExamples    = 3
	DefaultHistoryTurns   = domain.DefaultMaxTurns
	DefaultMaxTokens      = 80
	DefaultTemperature    = 0.75
)

// AssemblerConfig bounds the assembled request.
type AssemblerConfig struct {
	// MaxPromptChars is the total prompt ceiling in characters.
	MaxPromptChars int

	// MaxExamples caps the worked examples drawn from retrieval.
	MaxExamples int

	// HistoryTurns is the conversation window read from state.
	HistoryTurns int

	// MaxTokens is the generation output bound forwarded to backends.
	MaxTokens int

	// Temperature is the sampling temperature forwarded to backends.
	Temperature float64
}

// withDefaults fills unset fields.
func (c AssemblerConfig) withDefaults() AssemblerConfig {
	if c.MaxPromptChars <= 0 {
		c.MaxPromptChars = DefaultMaxPromptChars
	}
	if c.MaxExamples <= 0 {
		c.MaxExamples = DefaultMaxExamples
	}
	if c.HistoryTurns <= 0 {
		c.HistoryTurns = DefaultHistoryTurns
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	return c
}

// PromptAssembler composes persona, retrieved context, and history into
// a bounded generation request.
type PromptAssembler struct {
	cfg AssemblerConfig
}

// NewPromptAssembler creates an assembler with the given bounds.
func NewPromptAssembler(cfg AssemblerConfig) *PromptAssembler {
	return &PromptAssembler{cfg: cfg.withDefaults()}
}

// Assemble builds the generation request. Composition order: persona
// header, situational instruction, worked examples, recent history,
// then the new input as the final unanswered turn. When over budget it
// truncates in priority order - oldest history turns first, then the
// lowest-ranked example, then the situational instruction - and never
// drops the persona header or the new input.
func (a *PromptAssembler) Assemble(
	userInput, contextTag, emotionTag string,
	retrieval domain.RetrievalResult,
	state *domain.ConversationState,
	persona *domain.PersonaProfile,
) domain.GenerationRequest {
	logger.Section("Prompt Assembly")

	header := fmt.Sprintf("You are %s. %s\nYou must respond in character. Keep replies concise (1-3 sentences).",
		persona.Name, persona.Style)

	instruction := persona.ToneFor(contextTag)
	if mod := persona.EmotionModifier(emotionTag); mod != "" {
		instruction = strings.TrimSpace(instruction + " " + mod)
	}

	examples := a.renderExamples(retrieval, persona)
	history := a.renderHistory(state)
	final := fmt.Sprintf("User: %s\n%s:", userInput, persona.Name)

	logger.Debug("Sections: examples=%d, history=%d, instruction=%t",
		len(examples), len(history), instruction != "")

	prompt := a.fitToBudget(header, instruction, examples, history, final)

	logger.Debug("Assembled prompt: %d chars (ceiling %d)", len(prompt), a.cfg.MaxPromptChars)

	return domain.GenerationRequest{
		Prompt:      prompt,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}
}

// renderExamples formats up to MaxExamples retrieved entries as
// situation -> line demonstrations, falling back to the persona's
// canonical lines when retrieval is empty. The fallback guarantees the
// request always contains at least one demonstration, even against a
// cold or empty index. This is a data-completeness fallback, not an
// error-masking one.
func (a *PromptAssembler) renderExamples(retrieval domain.RetrievalResult, persona *domain.PersonaProfile) []string {
	var examples []string
	for _, ex := range retrieval {
		if len(examples) >= a.cfg.MaxExamples {
			break
		}
		situation := ex.Entry.PromptText
		if situation == "" {
			situation = "Say something in character."
		}
		examples = append(examples, fmt.Sprintf("When asked: %q\n%s said: %q", situation, persona.Name, ex.Entry.ResponseText))
	}
	if len(examples) > 0 {
		return examples
	}
	for _, line := range persona.Examples {
		if len(examples) >= a.cfg.MaxExamples {
			break
		}
		examples = append(examples, fmt.Sprintf("When asked: %q\n%s said: %q", "Say something in character.", persona.Name, line))
	}
	return examples
}

// renderHistory formats the bounded window, oldest first.
func (a *PromptAssembler) renderHistory(state *domain.ConversationState) []string {
	if state == nil {
		return nil
	}
	window := state.Window(a.cfg.HistoryTurns)
	lines := make([]string, 0, len(window))
	for _, turn := range window {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker, turn.Text))
	}
	return lines
}

// fitToBudget joins the sections, shedding droppable content until the
// prompt fits the ceiling. Identity and the current question are never
// sacrificed for context.
func (a *PromptAssembler) fitToBudget(header, instruction string, examples, history []string, final string) string {
	build := func() string {
		var b strings.Builder
		b.WriteString(header)
		if instruction != "" {
			b.WriteString("\n")
			b.WriteString(instruction)
		}
		if len(examples) > 0 {
			b.WriteString("\n\nExamples of how you speak:\n")
			b.WriteString(strings.Join(examples, "\n"))
		}
		if len(history) > 0 {
			b.WriteString("\n\nRecent conversation:\n")
			b.WriteString(strings.Join(history, "\n"))
		}
		b.WriteString("\n\n")
		b.WriteString(final)
		return b.String()
	}

	prompt := build()
	for len(prompt) > a.cfg.MaxPromptChars {
		switch {
		case len(history) > 0:
			history = history[1:] // oldest turn first
		case len(examples) > 0:
			examples = examples[:len(examples)-1] // lowest-ranked example
		case instruction != "":
			instruction = ""
		default:
			logger.Warn("Prompt exceeds ceiling with only header and input remaining (%d > %d)",
				len(prompt), a.cfg.MaxPromptChars)
			return prompt
		}
		prompt = build()
	}
	return prompt
}
