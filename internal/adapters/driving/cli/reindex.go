package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex [file...]",
	Short: "Replace the forum corpus from JSON document files",
	Long: `Clears every forum-typed record, then chunks and indexes the given
documents. Documents missing a title or content are skipped and counted
rather than aborting the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("no embedding provider configured, run 'agora config set-embedding' first")
	}

	var docs []domain.SourceDocument
	for _, path := range args {
		loaded, err := loadDocuments(path)
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
	}

	report, err := indexService.Reindex(context.Background(), docs)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Indexed %d documents, skipped %d.\n", report.Indexed, report.Skipped)
	for _, reason := range report.SkipReasons {
		cmd.Printf("  skipped: %s\n", reason)
	}
	return nil
}
