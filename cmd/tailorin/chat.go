package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/tailorin/internal/panel"
)

var chatCmd = &cobra.Command{
	Use:   "chat <question...>",
	Short: "Ask the backend one question about your résumé or the role",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tr, err := setupTranscript(cfg, logger)
	if err != nil {
		logger.Error("failed to open transcript", "error", err)
		os.Exit(1)
	}
	defer tr.Close()

	backend, err := setupBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to set up backend", "error", err)
		os.Exit(1)
	}
	ctrl := panel.New(panel.Options{Backend: backend, Transcript: tr, Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl.SetChatInput(strings.Join(args, " "))
	chatErr := ctrl.SendChat(ctx)

	conv := ctrl.Snapshot().Conversation
	if len(conv) == 0 {
		return nil
	}
	last := conv[len(conv)-1]
	if last.Sender == panel.SenderError {
		fmt.Fprintln(os.Stderr, last.Text)
	} else {
		fmt.Println(last.Text)
	}
	if chatErr != nil {
		tr.Close()
		os.Exit(1)
	}
	return nil
}
