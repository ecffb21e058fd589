package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/agora-labs/agora-cli/internal/logger"
)

// watchSettleDelay lets a writer finish before the dropped file is read.
const watchSettleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a drop directory and index JSON documents as they appear",
	Long: `Watches a directory and indexes any JSON document file created or
updated in it. Useful as a simple ingestion pipe: scrapers write files,
agora picks them up. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("no embedding provider configured, run 'agora config set-embedding' first")
	}

	dir := args[0]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return errors.New("watch target must be an existing directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	cmd.Printf("Watching %s for JSON documents. Ctrl-C to stop.\n", dir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}

			time.Sleep(watchSettleDelay)
			ingestFile(cmd, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-sigs:
			cmd.Println("\nStopping.")
			return nil
		}
	}
}

// ingestFile indexes one dropped file. Failures are reported and skipped so
// the watch loop keeps running.
func ingestFile(cmd *cobra.Command, path string) {
	docs, err := loadDocuments(path)
	if err != nil {
		cmd.PrintErrf("skipping %s: %v\n", path, err)
		return
	}

	ids, err := indexService.AddDocuments(context.Background(), docs)
	if err != nil {
		cmd.PrintErrf("indexing %s failed after %d chunks: %v\n", path, len(ids), err)
		return
	}
	cmd.Printf("%s: %d documents, %d chunks\n", path, len(docs), len(ids))
}
