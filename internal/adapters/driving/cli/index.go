package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the dialogue embedding index",
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index size and freshness",
	RunE:  runIndexStatus,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-embed the corpus and replace the index",
	RunE:  runIndexRebuild,
}

func init() {
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if dialogueService == nil {
		return errors.New("dialogue service not configured")
	}

	count, fresh, err := dialogueService.IndexStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("index status failed: %w", err)
	}

	freshness := "stale (rebuild pending)"
	if fresh {
		freshness = "fresh"
	}
	cmd.Printf("Entries:   %d\n", count)
	cmd.Printf("Freshness: %s\n", freshness)
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if dialogueService == nil {
		return errors.New("dialogue service not configured")
	}

	cmd.Println("Rebuilding index...")
	if err := dialogueService.RebuildIndex(cmd.Context()); err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}

	count, _, err := dialogueService.IndexStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("index status failed: %w", err)
	}
	cmd.Printf("Done. %d entries indexed.\n", count)
	return nil
}
