package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index by semantic similarity",
	Long: `Runs adaptive-recall similarity search: a normalized first pass, and
when it finds too little, a keyword-reduced second pass with a relaxed
threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity score (0 = default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("no embedding provider configured, run 'agora config set-embedding' first")
	}

	results, err := indexService.Search(context.Background(), args[0], domain.SearchOptions{
		Limit:     searchLimit,
		Threshold: searchThreshold,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Metadata.Title
		if title == "" {
			title = results[i].ID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		if results[i].Metadata.URL != "" {
			cmd.Printf("      %s\n", results[i].Metadata.URL)
		}
		snippet := domain.Truncate(domain.CleanMarkup(results[i].Text), 160)
		if snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	return nil
}
