package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/tailorin/internal/store"
)

var (
	historyLimit int
	historyPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print past chat turns",
	Long:  "Prints the chat transcript kept at store.path. --prune deletes entries older than the given age instead.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "number of most recent entries to print (0 for all)")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete entries older than this, e.g. 720h")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Store.Path == "" {
		fmt.Println("No transcript configured (set store.path in config.yaml).")
		return nil
	}

	ctx := context.Background()

	if historyPrune > 0 {
		s, err := store.NewSQLiteStore(cfg.Store.Path, "")
		if err != nil {
			logger.Error("failed to open transcript", "path", cfg.Store.Path, "error", err)
			os.Exit(1)
		}
		defer s.Close()
		n, err := s.Cleanup(ctx, historyPrune)
		if err != nil {
			logger.Error("prune failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %d entries older than %s.\n", n, historyPrune)
		return nil
	}

	if _, err := os.Stat(cfg.Store.Path); errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No chat history yet.")
		return nil
	}

	s, err := store.OpenReadOnly(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open transcript", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer s.Close()

	records, err := s.History(ctx, historyLimit)
	if err != nil {
		logger.Error("failed to read transcript", "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No chat history yet.")
		return nil
	}

	session := ""
	for _, r := range records {
		if r.Session != session {
			if session != "" {
				fmt.Println()
			}
			session = r.Session
		}
		fmt.Printf("%s  %-9s  %s\n", r.Entry.At.Format("2006-01-02 15:04"), r.Entry.Sender, r.Entry.Text)
	}
	return nil
}
