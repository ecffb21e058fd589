package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage dialogue sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session's conversation state",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear [session-id]",
	Short: "Delete a session's state and memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionClear,
}

var sessionResolveCmd = &cobra.Command{
	Use:   "resolve [session-id] [index] [resolution]",
	Short: "Mark a contradiction as resolved",
	Args:  cobra.ExactArgs(3),
	RunE:  runSessionResolve,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionResolveCmd)
	rootCmd.AddCommand(sessionCmd)
}

func requireAssistant() error {
	if assistantService == nil {
		return errors.New("no completion provider configured, run 'agora config set-completion' first")
	}
	return nil
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	ids, err := assistantService.Sessions(context.Background())
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		cmd.Println("No sessions.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	state, err := assistantService.GetState(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	cmd.Printf("Analyzed messages: %d\n", state.AnalyzedMessages)
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
	}
	return nil
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	if err := assistantService.ClearSession(context.Background(), args[0]); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	cmd.Printf("Session %s cleared.\n", args[0])
	return nil
}

func runSessionResolve(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid contradiction index %q", args[1])
	}

	if err := assistantService.ResolveContradiction(context.Background(), args[0], index, args[2]); err != nil {
		return fmt.Errorf("resolve contradiction: %w", err)
	}
	cmd.Println("Contradiction resolved.")
	return nil
}
