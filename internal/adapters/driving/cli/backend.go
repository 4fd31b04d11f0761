package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Manage text generation backends",
}

var backendListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered backends",
	RunE:  runBackendList,
}

var backendUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Select the active backend",
	Long: `Selects which generation backend answers future turns.

Switching is persisted in settings and takes effect immediately; only
conversation history carries across a switch.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackendUse,
}

var backendSetKeyCmd = &cobra.Command{
	Use:   "set-key [name]",
	Short: "Store an API key for a hosted backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackendSetKey,
}

func init() {
	backendCmd.AddCommand(backendListCmd)
	backendCmd.AddCommand(backendUseCmd)
	backendCmd.AddCommand(backendSetKeyCmd)
	rootCmd.AddCommand(backendCmd)
}

func runBackendList(cmd *cobra.Command, _ []string) error {
	if backendRegistry == nil {
		return errors.New("backend registry not configured")
	}

	names := backendRegistry.Names()
	if len(names) == 0 {
		cmd.Println("No backends registered.")
		return nil
	}

	current := backendRegistry.CurrentName()
	cmd.Println("Backends:")
	for _, name := range names {
		marker := " "
		if name == current {
			marker = "*"
		}
		cmd.Printf("  %s %s\n", marker, name)
	}
	return nil
}

func runBackendUse(cmd *cobra.Command, args []string) error {
	if backendRegistry == nil {
		return errors.New("backend registry not configured")
	}

	name := strings.ToLower(args[0])
	if err := backendRegistry.Use(name); err != nil {
		return err
	}

	if settingsStore != nil {
		if err := settingsStore.Update(func(s *domain.Settings) {
			s.Backend = domain.BackendKind(name)
		}); err != nil {
			return fmt.Errorf("persisting backend selection: %w", err)
		}
	}

	cmd.Printf("Now using backend %q.\n", name)
	return nil
}

func runBackendSetKey(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	kind := domain.BackendKind(strings.ToLower(args[0]))
	if !kind.RequiresAPIKey() {
		return fmt.Errorf("backend %q does not use an API key", kind)
	}

	cmd.Printf("API key for %s: ", kind)
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading API key: %w", err)
	}
	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return errors.New("empty API key")
	}

	err = settingsStore.Update(func(s *domain.Settings) {
		switch kind {
		case domain.BackendOpenAI:
			s.OpenAIKey = key
		case domain.BackendAnthropic:
			s.AnthropicKey = key
		case domain.BackendOllama:
			// unreachable, filtered above
		}
	})
	if err != nil {
		return fmt.Errorf("persisting API key: %w", err)
	}

	cmd.Printf("Stored key for %s (%s).\n", kind, maskAPIKey(key))
	cmd.Println("Restart or re-run to pick up the new credential.")
	return nil
}

// maskAPIKey shows only the first and last four characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
