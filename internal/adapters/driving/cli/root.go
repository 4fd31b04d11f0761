// Package cli implements the gumshoe command-line interface.
// It is a driving adapter: commands translate terminal invocations into
// calls on the core driving ports.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/wastelandworks/gumshoe/internal/adapters/driven/config/file"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driving"
	"github.com/wastelandworks/gumshoe/internal/core/services"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	dialogueService driving.DialogueService
	backendRegistry *services.BackendRegistry
	settingsStore   *file.SettingsStore
	personaStore    *file.PersonaStore
)

// Services aggregates everything the commands need.
type Services struct {
	Dialogue driving.DialogueService
	Registry *services.BackendRegistry
	Settings *file.SettingsStore
	Persona  *file.PersonaStore
}

// SetServices wires the command tree to live services.
func SetServices(s Services) {
	dialogueService = s.Dialogue
	backendRegistry = s.Registry
	settingsStore = s.Settings
	personaStore = s.Persona
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "gumshoe",
	Short: "Retrieval-grounded character dialogue from your terminal",
	Long: `Gumshoe holds an in-character conversation grounded in a dialogue corpus.

It embeds the corpus into a persisted index, retrieves the lines most
similar to what you say, and prompts a text-generation backend to answer
in the character's voice. When generation misbehaves, it falls back to
the best retrieved line instead of breaking character.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
	cobra.OnInitialize(func() {
		logger.SetVerbose(verbose)
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
