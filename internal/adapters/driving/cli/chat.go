package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui"
	"github.com/wastelandworks/gumshoe/internal/adapters/driving/tui/messages"
	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Launches the interactive chat interface.

Each turn is grounded in the dialogue corpus before generation, and
edits to the persona file take effect live without restarting.

Controls:
  Enter    - Send
  Ctrl+L   - Clear conversation history
  Esc      - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if dialogueService == nil {
		return errors.New("dialogue service not configured")
	}

	app, err := tui.NewApp(tui.NewPorts(dialogueService))
	if err != nil {
		return fmt.Errorf("failed to create chat interface: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())

	// Live persona reload: watch the persona file for the lifetime of
	// the chat session and push changes into the running program.
	if personaStore != nil {
		watchCtx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		err := personaStore.Watch(watchCtx, func() {
			profile, err := personaStore.Load()
			if err != nil {
				logger.Warn("Persona reload failed: %v", err)
				return
			}
			if setter, ok := dialogueService.(interface {
				SetPersona(*domain.PersonaProfile)
			}); ok {
				setter.SetPersona(profile)
			}
			p.Send(messages.PersonaReloaded{Name: profile.Name})
		})
		if err != nil {
			logger.Warn("Persona live reload unavailable: %v", err)
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
