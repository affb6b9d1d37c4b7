package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/tailorin/internal/bus"
	"github.com/amishk599/tailorin/internal/config"
	"github.com/amishk599/tailorin/internal/model"
	"github.com/amishk599/tailorin/internal/panel"
)

// postingFlags are shared by the commands that act on a posting.
type postingFlags struct {
	company string
	role    string
	jd      string
	jdFile  string
	from    string
}

func (f *postingFlags) register(cmd *cobra.Command, withJD bool) {
	cmd.Flags().StringVar(&f.company, "company", "", "company name")
	cmd.Flags().StringVar(&f.role, "role", "", "role title")
	if withJD {
		cmd.Flags().StringVar(&f.jd, "jd", "", "job description text")
		cmd.Flags().StringVar(&f.jdFile, "jd-file", "", "read the job description from a file")
	}
	cmd.Flags().StringVar(&f.from, "from", "", "extract the posting from a URL or saved page first (flags override extracted fields)")
}

// apply fills the controller's form: extracted fields first, explicit flags on top.
func (f *postingFlags) apply(ctx context.Context, cfg *config.Config, ctrl *panel.Controller, logger *slog.Logger) error {
	if f.from != "" {
		p, err := extractOne(ctx, cfg, f.from, bus.NewRequestID(), logger)
		if err != nil {
			return err
		}
		ctrl.Deliver(p)
	}
	if f.company != "" {
		ctrl.SetCompany(f.company)
	}
	if f.role != "" {
		ctrl.SetRole(f.role)
	}
	if f.jdFile != "" {
		b, err := os.ReadFile(f.jdFile)
		if err != nil {
			return fmt.Errorf("read jd file: %w", err)
		}
		ctrl.SetJobDescription(string(b))
	}
	if f.jd != "" {
		ctrl.SetJobDescription(f.jd)
	}
	return nil
}

var (
	tailorFlags   postingFlags
	generateFlags postingFlags
	appliedFlags  postingFlags
	scoreFlags    postingFlags
)

var uploadCmd = &cobra.Command{
	Use:   "upload <resume.docx|resume.pdf>",
	Short: "Upload a résumé to the backend",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, nil, func(c *panel.Controller) panel.Action {
			if len(args) == 1 {
				c.SetResumePath(args[0])
			}
			return c.UploadAction()
		})
	},
}

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor the uploaded résumé to a posting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, &tailorFlags, (*panel.Controller).TailorAction)
	},
}

var generateCmd = &cobra.Command{
	Use:       "generate <docx|pdf>",
	Short:     "Have the backend save the tailored résumé as DOCX or PDF",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.FormatDOCX), string(model.FormatPDF)},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := model.DocFormat(strings.ToLower(args[0]))
		if !format.Valid() {
			return fmt.Errorf("format must be docx or pdf, got %q", args[0])
		}
		return runAction(cmd, &generateFlags, func(c *panel.Controller) panel.Action {
			return c.GenerateAction(format)
		})
	},
}

var appliedCmd = &cobra.Command{
	Use:   "applied",
	Short: "Record that you applied for a role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, &appliedFlags, (*panel.Controller).AppliedAction)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the uploaded résumé against a job description",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, &scoreFlags, (*panel.Controller).MatchAction)
	},
}

func init() {
	tailorFlags.register(tailorCmd, true)
	generateFlags.register(generateCmd, false)
	appliedFlags.register(appliedCmd, false)
	scoreFlags.register(scoreCmd, true)
	rootCmd.AddCommand(uploadCmd, tailorCmd, generateCmd, appliedCmd, scoreCmd)
}

// runAction fills the form from flags, runs one guarded action and prints
// the resulting status. Any failure exits 1.
func runAction(cmd *cobra.Command, flags *postingFlags, build func(*panel.Controller) panel.Action) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	target := ""
	if flags != nil {
		target = flags.from
	}
	ctrl, _, err := newController(cfg, target, nil, logger)
	if err != nil {
		logger.Error("failed to set up", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags != nil {
		if err := flags.apply(ctx, cfg, ctrl, logger); err != nil {
			logger.Error("failed to read posting", "error", err)
			os.Exit(1)
		}
	}

	runErr := ctrl.Run(ctx, build(ctrl))
	s := ctrl.Snapshot()
	if s.Match != nil {
		fmt.Println(s.Match.String())
	}
	fmt.Println(s.Status.Text)
	if runErr != nil {
		os.Exit(1)
	}
	return nil
}
