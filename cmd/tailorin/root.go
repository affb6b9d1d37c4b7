package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/tailorin/internal/api"
	"github.com/amishk599/tailorin/internal/bus"
	"github.com/amishk599/tailorin/internal/config"
	"github.com/amishk599/tailorin/internal/extract"
	"github.com/amishk599/tailorin/internal/host"
	"github.com/amishk599/tailorin/internal/model"
	"github.com/amishk599/tailorin/internal/panel"
	"github.com/amishk599/tailorin/internal/ratelimit"
	"github.com/amishk599/tailorin/internal/retry"
	"github.com/amishk599/tailorin/internal/secrets"
	"github.com/amishk599/tailorin/internal/store"
)

var (
	cfgPath string
	debug   bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "tailorin",
	Short: "Tailor your résumé to the job you're looking at",
	Long: "tailorin reads a job posting from your browser tab, a URL or a saved page,\n" +
		"and drives a résumé-tailoring backend from an interactive panel or one-shot commands.",
	// Default to `panel` so that `tailorin` with no args opens the panel.
	RunE:          runPanel,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: TAILORIN_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (the panel logs nowhere otherwise)")
}

// loadConfig resolves the config path and parses it. A .env file in the
// working directory is loaded first.
// Priority: explicit path arg > TAILORIN_CONFIG env var > "./config.yaml".
// Only the implicit ./config.yaml may be missing, in which case defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv("TAILORIN_CONFIG")
	}
	if path == "" {
		cfg, err := config.Load("config.yaml")
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return cfg, err
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stderr, dbg)
}

func newLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// setupTUILogger keeps logs off the terminal while a TUI owns it. The
// returned closer must be called on exit.
func setupTUILogger(dbg bool) (*slog.Logger, func(), error) {
	if logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, dbg), func() { f.Close() }, nil
}

// setupBackend builds the backend client: HTTP, then pacing, then retries,
// so every retry attempt is paced too.
func setupBackend(cfg *config.Config, logger *slog.Logger) (*api.Client, error) {
	token := ""
	if acct := cfg.Backend.TokenAccount; acct != "" {
		t, err := secrets.Token(acct)
		if err != nil {
			return nil, err
		}
		if t == "" {
			logger.Warn("no token stored for account, sending requests without auth", "account", acct)
		}
		token = t
	}

	httpClient := &http.Client{Timeout: cfg.Backend.Timeout}
	var doer model.Doer = api.NewHTTPDoer(cfg.Backend.BaseURL, token, httpClient, logger)
	doer = ratelimit.NewLimitedDoer(doer, ratelimit.NewLimiter(cfg.Backend.MinDelay))
	if cfg.Backend.Retries > 0 {
		doer = retry.NewRetryDoer(doer, cfg.Backend.Retries, cfg.Backend.RetryDelay, logger)
	}

	logger.Debug("backend configured",
		"base_url", cfg.Backend.BaseURL,
		"timeout", cfg.Backend.Timeout.String(),
		"retries", cfg.Backend.Retries,
		"min_delay", cfg.Backend.MinDelay.String(),
		"auth", token != "",
	)
	return api.NewClient(doer), nil
}

// setupHost picks the host for target: an http(s) URL uses the url host,
// any other non-empty target is a saved page, and an empty target uses
// host.type from the config.
func setupHost(cfg *config.Config, target string, logger *slog.Logger) (model.Host, error) {
	ex := extract.New(cfg.Extract.Sites, logger)

	switch {
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return host.NewURLHost(target, cfg.Host.UserAgent, cfg.Host.Timeout, ex, logger), nil
	case target != "":
		return host.NewFileHost(target, ex, logger), nil
	}

	// Without a target the url and file hosts have no tab, so extraction
	// reports ErrNoActiveTab while backend actions still work.
	switch cfg.Host.Type {
	case config.HostURL:
		return host.NewURLHost("", cfg.Host.UserAgent, cfg.Host.Timeout, ex, logger), nil
	case config.HostFile:
		return host.NewFileHost("", ex, logger), nil
	case config.HostChrome:
		httpClient := &http.Client{Timeout: cfg.Host.Timeout}
		return host.NewChromeHost(cfg.Host.DevToolsURL, httpClient, ex, cfg.Host.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown host.type %q", cfg.Host.Type)
	}
}

// transcript is a panel.Transcript that must be closed.
type transcript interface {
	panel.Transcript
	Close() error
}

// setupTranscript opens the chat transcript. A transcript held by another
// process degrades to no transcript rather than failing.
func setupTranscript(cfg *config.Config, logger *slog.Logger) (transcript, error) {
	if cfg.Store.Path == "" {
		return store.NewNopStore(), nil
	}
	s, err := store.NewSQLiteStore(cfg.Store.Path, bus.NewRequestID())
	if errors.Is(err, store.ErrLocked) {
		logger.Warn("transcript in use, chat will not be recorded", "path", cfg.Store.Path)
		return store.NewNopStore(), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newController wires a controller to the backend, host and a fresh bus.
func newController(cfg *config.Config, target string, tr panel.Transcript, logger *slog.Logger) (*panel.Controller, *bus.Bus, error) {
	backend, err := setupBackend(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	h, err := setupHost(cfg, target, logger)
	if err != nil {
		return nil, nil, err
	}
	msgBus := bus.New(cfg.Host.MessageBuffer, logger)
	ctrl := panel.New(panel.Options{
		Backend:    backend,
		Host:       h,
		Sender:     msgBus,
		Transcript: tr,
		NewID:      bus.NewRequestID,
		Logger:     logger,
	})
	return ctrl, msgBus, nil
}
