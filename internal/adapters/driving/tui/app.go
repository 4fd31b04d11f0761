package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui/components/input"
	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui/components/status"
	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui/keymap"
	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui/messages"
	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui/styles"
	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

// transcriptLine is one rendered exchange line.
type transcriptLine struct {
	speaker string
	text    string
	user    bool
}

// App is the chat TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// chatInput is the user utterance field.
	chatInput *input.ChatInput

	// statusBar shows state and keybinding hints.
	statusBar *status.Bar

	// spinner animates while a reply is generated.
	spinner spinner.Model

	// state tracks the bounded conversation history sent to the engine.
	state *domain.ConversationState

	// transcript is the full on-screen history; unlike state it is not
	// windowed, scrollback is cheap.
	transcript []transcriptLine

	// personaName is the character's speaker label.
	personaName string

	// pending is the user utterance awaiting a reply. History is
	// committed to state only after the turn succeeds, so the prompt
	// never carries the in-flight input twice.
	pending string

	// waiting is true while a turn is in flight.
	waiting bool

	// width and height are terminal dimensions.
	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	personaName := ports.Dialogue.Persona().Name

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatInput:   input.NewChatInput(s, "You"),
		statusBar:   status.NewBar(s, km),
		spinner:     sp,
		state:       domain.NewConversationState(uuid.NewString()),
		personaName: personaName,
		width:       80,
		height:      24,
	}, nil
}

// WithContext sets the context used for dialogue turns.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init initialises the application.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.chatInput.Init(), a.spinner.Tick)
}

// Update handles messages and updates the model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.chatInput.SetWidth(msg.Width)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ReplyReceived:
		a.waiting = false
		if msg.Err != nil {
			a.pending = ""
			a.statusBar.SetError(msg.Err.Error())
			return a, nil
		}
		a.statusBar.SetState(status.StateReady)
		if a.pending == "" {
			// Late reply from a session cleared mid-turn.
			return a, nil
		}
		a.state.Append("You", a.pending)
		a.pending = ""
		a.state.Append(a.personaName, msg.Reply)
		a.transcript = append(a.transcript, transcriptLine{speaker: a.personaName, text: msg.Reply})
		a.statusBar.SetTurns(len(a.state.Turns))
		return a, nil

	case messages.PersonaReloaded:
		a.personaName = msg.Name
		a.transcript = append(a.transcript, transcriptLine{
			speaker: "",
			text:    fmt.Sprintf("(persona reloaded: %s)", msg.Name),
		})
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

// handleKey routes key presses.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keymap.Clear):
		a.state = domain.NewConversationState(uuid.NewString())
		a.transcript = nil
		// A turn still in flight holds the old state; dropping pending
		// keeps its late reply from being committed to the new session.
		a.pending = ""
		a.waiting = false
		a.statusBar.SetState(status.StateReady)
		a.statusBar.SetTurns(0)
		return a, nil

	case key.Matches(msg, a.keymap.Send):
		text := strings.TrimSpace(a.chatInput.Value())
		if text == "" || a.waiting {
			return a, nil
		}
		a.chatInput.Reset()
		a.transcript = append(a.transcript, transcriptLine{speaker: "You", text: text, user: true})
		a.pending = text
		a.waiting = true
		a.statusBar.SetState(status.StateThinking)
		return a, tea.Batch(a.spinner.Tick, a.turnCmd(text))
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

// turnCmd runs one dialogue turn off the UI goroutine. The state is
// captured here, on the UI goroutine: Clear may reassign a.state while
// the command is still running.
func (a *App) turnCmd(text string) tea.Cmd {
	state := a.state
	return func() tea.Msg {
		reply, err := a.ports.Dialogue.HandleTurn(a.ctx, text, "", "", state)
		return messages.ReplyReceived{Reply: reply, Err: err}
	}
}

// View renders the application.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render(fmt.Sprintf(" %s ", a.personaName)))
	b.WriteString("\n\n")

	for _, line := range a.transcript {
		if line.speaker == "" {
			b.WriteString(a.styles.Muted.Render(line.text))
			b.WriteString("\n")
			continue
		}
		label := a.styles.PersonaLabel
		if line.user {
			label = a.styles.UserLabel
		}
		b.WriteString(label.Render(line.speaker + ":"))
		b.WriteString(" ")
		b.WriteString(a.styles.Normal.Render(line.text))
		b.WriteString("\n")
	}

	if a.waiting {
		b.WriteString(a.spinner.View())
		b.WriteString(a.styles.Muted.Render(" thinking"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.chatInput.View())
	b.WriteString("\n")
	b.WriteString(a.statusBar.View())

	return b.String()
}

// Transcript returns the rendered history length (used in tests).
func (a *App) Transcript() int {
	return len(a.transcript)
}

// State returns the bounded engine history (used in tests).
func (a *App) State() *domain.ConversationState {
	return a.state
}
