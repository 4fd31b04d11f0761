package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui/messages"
	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driving"
)

// Ensure the stub satisfies the port.
var _ driving.DialogueService = (*stubDialogue)(nil)

type stubDialogue struct {
	reply     string
	err       error
	turns     int
	lastInput string
	lastState *domain.ConversationState
}

func (s *stubDialogue) HandleTurn(_ context.Context, userInput, _, _ string, state *domain.ConversationState) (string, error) {
	s.turns++
	s.lastInput = userInput
	s.lastState = state
	return s.reply, s.err
}

func (s *stubDialogue) RebuildIndex(context.Context) error { return nil }

func (s *stubDialogue) IndexStatus(context.Context) (int, bool, error) { return 0, true, nil }

func (s *stubDialogue) Persona() *domain.PersonaProfile {
	return &domain.PersonaProfile{
		Name:         "Nick Valentine",
		Style:        "Noir detective.",
		Examples:     []string{"Hell of a game."},
		FallbackLine: "That's a puzzle, pal.",
	}
}

func newTestApp(t *testing.T, dialogue *stubDialogue) *App {
	t.Helper()
	app, err := NewApp(NewPorts(dialogue))
	require.NoError(t, err)
	return app
}

func sendKey(app *App, keyType tea.KeyType, runes ...rune) *App {
	model, _ := app.Update(tea.KeyMsg{Type: keyType, Runes: runes})
	return model.(*App)
}

func TestNewApp_RequiresDialogueService(t *testing.T) {
	_, err := NewApp(NewPorts(nil))
	assert.ErrorIs(t, err, ErrInvalidPorts)

	_, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrInvalidPorts)
}

func TestNewApp_UsesPersonaName(t *testing.T) {
	app := newTestApp(t, &stubDialogue{})

	assert.Contains(t, app.View(), "Nick Valentine")
}

func TestApp_SendRunsTurn(t *testing.T) {
	dialogue := &stubDialogue{reply: "Keep your eyes open, pal."}
	app := newTestApp(t, dialogue)
	app.chatInput.SetValue("Who hired you?")

	model, cmd := app.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(*App)

	require.NotNil(t, cmd)
	assert.True(t, app.waiting)
	assert.Equal(t, "Who hired you?", app.pending)
	assert.Empty(t, app.chatInput.Value())
	// The user line is on screen immediately, not yet in engine history.
	assert.Equal(t, 1, app.Transcript())
	assert.Empty(t, app.State().Turns)
}

func TestApp_SendIgnoresEmptyInput(t *testing.T) {
	app := newTestApp(t, &stubDialogue{})
	app.chatInput.SetValue("   ")

	model, cmd := app.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(*App)

	assert.Nil(t, cmd)
	assert.False(t, app.waiting)
	assert.Zero(t, app.Transcript())
}

func TestApp_SendIgnoredWhileWaiting(t *testing.T) {
	dialogue := &stubDialogue{reply: "Easy now."}
	app := newTestApp(t, dialogue)
	app.chatInput.SetValue("First question")
	app = sendKey(app, tea.KeyEnter)

	app.chatInput.SetValue("Second question")
	app = sendKey(app, tea.KeyEnter)

	assert.Equal(t, "First question", app.pending)
	assert.Equal(t, 1, app.Transcript())
}

func TestApp_ReplyCommitsBothTurns(t *testing.T) {
	dialogue := &stubDialogue{reply: "Keep your eyes open, pal."}
	app := newTestApp(t, dialogue)
	app.chatInput.SetValue("Who hired you?")
	app = sendKey(app, tea.KeyEnter)

	model, _ := app.Update(messages.ReplyReceived{Reply: "Keep your eyes open, pal."})
	app = model.(*App)

	assert.False(t, app.waiting)
	assert.Empty(t, app.pending)
	require.Len(t, app.State().Turns, 2)
	assert.Equal(t, "You", app.State().Turns[0].Speaker)
	assert.Equal(t, "Who hired you?", app.State().Turns[0].Text)
	assert.Equal(t, "Nick Valentine", app.State().Turns[1].Speaker)
	assert.Equal(t, "Keep your eyes open, pal.", app.State().Turns[1].Text)
	assert.Contains(t, app.View(), "Keep your eyes open, pal.")
}

func TestApp_ReplyErrorLeavesHistoryUntouched(t *testing.T) {
	app := newTestApp(t, &stubDialogue{})
	app.chatInput.SetValue("Who hired you?")
	app = sendKey(app, tea.KeyEnter)

	model, _ := app.Update(messages.ReplyReceived{Err: errors.New("backend down")})
	app = model.(*App)

	assert.False(t, app.waiting)
	assert.Empty(t, app.pending)
	assert.Empty(t, app.State().Turns)
	assert.Contains(t, app.View(), "backend down")
}

func TestApp_ClearResetsConversation(t *testing.T) {
	dialogue := &stubDialogue{reply: "Sure thing."}
	app := newTestApp(t, dialogue)
	app.chatInput.SetValue("Hello")
	app = sendKey(app, tea.KeyEnter)
	model, _ := app.Update(messages.ReplyReceived{Reply: "Sure thing."})
	app = model.(*App)
	oldSession := app.State().SessionID

	app = sendKey(app, tea.KeyCtrlL)

	assert.Zero(t, app.Transcript())
	assert.Empty(t, app.State().Turns)
	assert.NotEqual(t, oldSession, app.State().SessionID)
}

func TestApp_PersonaReloadSwapsSpeakerLabel(t *testing.T) {
	app := newTestApp(t, &stubDialogue{})

	model, _ := app.Update(messages.PersonaReloaded{Name: "Ellie Perkins"})
	app = model.(*App)

	assert.Contains(t, app.View(), "Ellie Perkins")
	assert.Contains(t, app.View(), "persona reloaded")
}

func TestApp_QuitKey(t *testing.T) {
	app := newTestApp(t, &stubDialogue{})

	_, cmd := app.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_WindowResize(t *testing.T) {
	app := newTestApp(t, &stubDialogue{})

	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(*App)

	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
}

func TestApp_TurnCmdHoldsStateFromSendTime(t *testing.T) {
	dialogue := &stubDialogue{reply: "Still here."}
	app := newTestApp(t, dialogue)
	sendTime := app.State()

	cmd := app.turnCmd("Who hired you?")
	app = sendKey(app, tea.KeyCtrlL)
	cmd()

	assert.Same(t, sendTime, dialogue.lastState,
		"a turn keeps the state it was sent against, not the cleared one")
	assert.NotSame(t, app.State(), dialogue.lastState)
}

func TestApp_ClearMidTurnDropsLateReply(t *testing.T) {
	dialogue := &stubDialogue{reply: "Late reply."}
	app := newTestApp(t, dialogue)
	app.chatInput.SetValue("Who hired you?")
	app = sendKey(app, tea.KeyEnter)

	app = sendKey(app, tea.KeyCtrlL)
	model, _ := app.Update(messages.ReplyReceived{Reply: "Late reply."})
	app = model.(*App)

	assert.Empty(t, app.State().Turns,
		"a reply to a cleared session must not be committed")
}

func TestApp_TurnCmdDeliversReply(t *testing.T) {
	dialogue := &stubDialogue{reply: "Keep your eyes open, pal."}
	app := newTestApp(t, dialogue)

	msg := app.turnCmd("Who hired you?")()

	reply, ok := msg.(messages.ReplyReceived)
	require.True(t, ok)
	assert.Equal(t, "Keep your eyes open, pal.", reply.Reply)
	assert.NoError(t, reply.Err)
	assert.Equal(t, "Who hired you?", dialogue.lastInput)
}
