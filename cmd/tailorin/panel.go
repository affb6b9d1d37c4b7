package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/tailorin/internal/tui"
)

var panelTarget string

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive panel (TUI)",
	Long: "Opens the tailoring panel. Press ctrl+e to extract the posting from the active\n" +
		"browser tab (or --target), then tailor, generate, score and chat from one screen.",
	RunE: runPanel,
}

func init() {
	panelCmd.Flags().StringVarP(&panelTarget, "target", "t", "", "URL or saved HTML file to extract from instead of the browser")
	rootCmd.Flags().StringVarP(&panelTarget, "target", "t", "", "URL or saved HTML file to extract from instead of the browser")
	rootCmd.AddCommand(panelCmd)
}

func runPanel(cmd *cobra.Command, args []string) error {
	// The panel owns the terminal, so logs go to --log-file or nowhere.
	logger, closeLog, err := setupTUILogger(debug)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		setupLogger(debug).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tr, err := setupTranscript(cfg, logger)
	if err != nil {
		setupLogger(debug).Error("failed to open transcript", "error", err)
		os.Exit(1)
	}
	defer tr.Close()

	ctrl, msgBus, err := newController(cfg, panelTarget, tr, logger)
	if err != nil {
		setupLogger(debug).Error("failed to set up panel", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("panel started", "host", cfg.Host.Type, "target", panelTarget, "backend", cfg.Backend.BaseURL)
	return tui.RunPanel(ctx, ctrl, msgBus.Listener())
}
