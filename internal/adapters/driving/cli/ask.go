package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

var (
	askContextTag string
	askEmotionTag string
	askJSON       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the character a single question",
	Long: `Produces one in-character reply and exits.

Optional tags steer the delivery: --context selects a situational tone
(investigation, combat, casual, ...) and --emotion selects a mood
modifier (stern, sad, questioning, ...). Unknown tags fall back to the
default casual tone.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askContextTag, "context", "", "situational context tag")
	askCmd.Flags().StringVar(&askEmotionTag, "emotion", "", "emotion tag")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if dialogueService == nil {
		return errors.New("dialogue service not configured")
	}

	state := domain.NewConversationState(uuid.NewString())
	reply, err := dialogueService.HandleTurn(cmd.Context(), args[0], askContextTag, askEmotionTag, state)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, reply)
	}

	cmd.Printf("%s: %s\n", dialogueService.Persona().Name, reply)
	return nil
}

func outputAskJSON(cmd *cobra.Command, reply string) error {
	payload := struct {
		Speaker string `json:"speaker"`
		Reply   string `json:"reply"`
	}{
		Speaker: dialogueService.Persona().Name,
		Reply:   reply,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
