package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

var indexClearType string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the vector index",
}

var indexAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Chunk and index documents from JSON files",
	Long: `Reads one or more JSON files, each holding a document object or an
array of documents ({"id", "title", "content", "url", "date"}), chunks
their content and adds every chunk to the index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndexAdd,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index record counts and dimensions",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove records from the index",
	Args:  cobra.NoArgs,
	RunE:  runIndexClear,
}

func init() {
	indexClearCmd.Flags().StringVar(&indexClearType, "type", "", "only clear records of this type (forum, upload)")
	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexClearCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("no embedding provider configured, run 'agora config set-embedding' first")
	}

	ctx := context.Background()
	total := 0
	for _, path := range args {
		docs, err := loadDocuments(path)
		if err != nil {
			return err
		}

		ids, err := indexService.AddDocuments(ctx, docs)
		total += len(ids)
		if err != nil {
			return fmt.Errorf("index %s (%d chunks committed): %w", path, total, err)
		}
		cmd.Printf("%s: %d documents, %d chunks\n", path, len(docs), len(ids))
	}

	cmd.Printf("Indexed %d chunks total.\n", total)
	return nil
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("no embedding provider configured, run 'agora config set-embedding' first")
	}

	stats := indexService.Stats()
	cmd.Printf("Records:    %d\n", stats.Records)
	cmd.Printf("Dimensions: %d\n", stats.Dimensions)
	for recordType, count := range stats.ByType {
		cmd.Printf("  %-8s %d\n", recordType, count)
	}
	return nil
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("no embedding provider configured, run 'agora config set-embedding' first")
	}

	ctx := context.Background()
	if indexClearType != "" {
		if err := indexService.ClearByType(ctx, indexClearType); err != nil {
			return fmt.Errorf("clear %q records: %w", indexClearType, err)
		}
		cmd.Printf("Cleared %q records.\n", indexClearType)
		return nil
	}

	if err := indexService.Clear(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}

// loadDocuments reads a JSON file holding one document or an array of
// documents.
func loadDocuments(path string) ([]domain.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var docs []domain.SourceDocument
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}

	var doc domain.SourceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: expected a document object or array: %w", path, err)
	}
	return []domain.SourceDocument{doc}, nil
}
