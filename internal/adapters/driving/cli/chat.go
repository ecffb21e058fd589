package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agora-labs/agora-cli/internal/adapters/driving/tui"
	"github.com/agora-labs/agora-cli/internal/core/domain"
)

var (
	chatSessionID string
	chatUseTUI    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive retrieval-augmented dialogue",
	Long: `Runs a dialogue session against the indexed corpus. Each turn retrieves
supporting documents, updates the conversation state, and asks the
configured completion provider for a response.

In-chat commands: /state, /draft, /quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session id to resume (default: new session)")
	chatCmd.Flags().BoolVar(&chatUseTUI, "tui", false, "use the full-screen terminal interface")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("no completion provider configured, run 'agora config set-completion' first")
	}

	sessionID := chatSessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if chatUseTUI {
		return tui.Run(assistantService, sessionID)
	}

	cmd.Printf("Session %s. Type /quit to exit.\n\n", sessionID)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var history []domain.Message
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil

		case "/state":
			printState(cmd, sessionID)
			continue

		case "/draft":
			draft, err := assistantService.Draft(ctx, sessionID, history)
			if err != nil {
				cmd.PrintErrf("draft failed: %v\n", err)
				continue
			}
			cmd.Printf("\n%s\n\n", draft)
			continue
		}

		result, err := assistantService.Turn(ctx, sessionID, history, line)
		if err != nil {
			cmd.PrintErrf("turn failed: %v\n", err)
			continue
		}
		history = result.History

		if len(result.Documents) > 0 {
			cmd.Printf("[%d supporting documents]\n", len(result.Documents))
		}
		cmd.Printf("\n%s\n\n", result.Response)
	}
	return scanner.Err()
}

func printState(cmd *cobra.Command, sessionID string) {
	state, err := assistantService.GetState(context.Background(), sessionID)
	if err != nil {
		cmd.PrintErrf("state unavailable: %v\n", err)
		return
	}

	cmd.Printf("Insights: %d\n", len(state.Insights))
	for _, insight := range state.Insights {
		cmd.Printf("  - [%s] %s\n", insight.Confidence, insight.Text)
	}
	cmd.Printf("Topics: %d\n", len(state.Topics))
	for _, topic := range state.Topics {
		cmd.Printf("  - %s (%s, %s)\n", topic.Label, topic.Priority, topic.Status)
	}
	cmd.Printf("Contradictions: %d\n", len(state.Contradictions))
	for i, c := range state.Contradictions {
		cmd.Printf("  [%d] %q vs %q (%s)\n", i, c.StatementA, c.StatementB, c.Status)
		if c.Resolution != "" {
			cmd.Printf("      resolved: %s\n", c.Resolution)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout())
}
