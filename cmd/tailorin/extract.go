package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/tailorin/internal/bus"
	"github.com/amishk599/tailorin/internal/config"
	"github.com/amishk599/tailorin/internal/model"
	"github.com/amishk599/tailorin/internal/tui"
)

var (
	extractJSON     bool
	extractTimeout  time.Duration
	extractParallel int
)

var extractCmd = &cobra.Command{
	Use:   "extract [url-or-file...]",
	Short: "Extract company, role and JD from pages",
	Long: "Extracts a job posting from each target. With no target the active browser tab is used.\n" +
		"Several targets are extracted concurrently and printed in the order given.",
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print one jd_data JSON message per target")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 0, "give up waiting for a result after this long (0 waits until interrupted)")
	extractCmd.Flags().IntVar(&extractParallel, "parallel", 4, "maximum extractions in flight")
	rootCmd.AddCommand(extractCmd)
}

// extraction is the result for one target.
type extraction struct {
	target    string
	requestID string
	posting   model.JobPosting
	err       error
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, extractTimeout)
		defer cancel()
	}

	targets := args
	if len(targets) == 0 {
		targets = []string{""}
	}

	var results []extraction
	work := func(ctx context.Context) error {
		results = extractAll(ctx, cfg, targets, logger)
		return nil
	}
	if len(targets) == 1 && !extractJSON && isatty.IsTerminal(os.Stdout.Fd()) {
		if err := tui.RunLoader(ctx, "Extracting JD...", work); err != nil {
			return err
		}
	} else {
		work(ctx)
	}

	failed := false
	for _, r := range results {
		if r.err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %v\n", displayTarget(r.target), r.err)
			continue
		}
		if extractJSON {
			b, err := json.Marshal(model.NewJobDataMessage(r.requestID, r.posting))
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Println(string(b))
			continue
		}
		printPosting(r.target, r.posting)
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

// extractAll runs one extraction per target, at most extractParallel at a
// time. Each target gets its own host and bus so results can't cross.
func extractAll(ctx context.Context, cfg *config.Config, targets []string, logger *slog.Logger) []extraction {
	results := make([]extraction, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(extractParallel, 1))
	for i, target := range targets {
		g.Go(func() error {
			id := bus.NewRequestID()
			p, err := extractOne(ctx, cfg, target, id, logger)
			results[i] = extraction{target: target, requestID: id, posting: p, err: err}
			return nil
		})
	}
	g.Wait()
	return results
}

// extractOne injects the extractor into target's tab and waits for its message.
func extractOne(ctx context.Context, cfg *config.Config, target, requestID string, logger *slog.Logger) (model.JobPosting, error) {
	h, err := setupHost(cfg, target, logger)
	if err != nil {
		return model.JobPosting{}, err
	}
	tab, err := h.ActiveTab(ctx)
	if err != nil {
		return model.JobPosting{}, fmt.Errorf("find active tab: %w", err)
	}

	msgBus := bus.New(cfg.Host.MessageBuffer, logger)
	if err := h.Inject(ctx, tab, requestID, msgBus); err != nil {
		return model.JobPosting{}, fmt.Errorf("failed to inject scraper: %w", err)
	}
	logger.Debug("waiting for extraction", "request_id", requestID, "url", tab.URL)

	p, err := msgBus.Listener().Next(ctx)
	if err != nil {
		return model.JobPosting{}, fmt.Errorf("waiting for %s: %w", tab.URL, err)
	}
	return p, nil
}

func printPosting(target string, p model.JobPosting) {
	fmt.Printf("── %s\n", displayTarget(target))
	fmt.Printf("Company: %s\n", p.Company)
	fmt.Printf("Role:    %s\n", p.Role)
	fmt.Printf("JD:      %s\n", p.JobDescription)
}

func displayTarget(target string) string {
	if target == "" {
		return "active tab"
	}
	return target
}
