// Package panel holds the state behind the tailoring panel and the actions
// that drive the backend from it.
package panel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/tailorin/internal/model"
)

// Transcript records chat entries somewhere durable.
type Transcript interface {
	Append(ctx context.Context, e Entry) error
}

// RequestIDFunc mints an ID for one extraction request.
type RequestIDFunc func() string

// Controller owns the form fields, status line, match indicator and chat
// conversation. It is safe for concurrent use; front ends render from
// Snapshot.
type Controller struct {
	backend    model.Backend
	host       model.Host
	sender     model.Sender
	transcript Transcript
	newID      RequestIDFunc
	logger     *slog.Logger
	now        func() time.Time

	mu           sync.Mutex
	company      string
	role         string
	jd           string
	resumePath   string
	chatInput    string
	status       Status
	match        *Match
	conversation []Entry
	downloads    bool
}

// Options are the collaborators a Controller needs.
type Options struct {
	Backend model.Backend
	Host    model.Host
	// Sender is handed to the host on injection; the matching listener
	// feeds results back through Deliver.
	Sender     model.Sender
	Transcript Transcript
	NewID      RequestIDFunc
	Logger     *slog.Logger
}

// New creates a controller in the Idle state.
func New(opts Options) *Controller {
	c := &Controller{
		backend:    opts.Backend,
		host:       opts.Host,
		sender:     opts.Sender,
		transcript: opts.Transcript,
		newID:      opts.NewID,
		logger:     opts.Logger,
		now:        time.Now,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.newID == nil {
		c.newID = func() string { return "" }
	}
	return c
}

// State is a copy of everything a front end renders.
type State struct {
	Company          string
	Role             string
	JobDescription   string
	ResumePath       string
	ChatInput        string
	Status           Status
	Match            *Match
	Conversation     []Entry
	DownloadsVisible bool
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Company:          c.company,
		Role:             c.role,
		JobDescription:   c.jd,
		ResumePath:       c.resumePath,
		ChatInput:        c.chatInput,
		Status:           c.status,
		Conversation:     append([]Entry(nil), c.conversation...),
		DownloadsVisible: c.downloads,
	}
	if c.match != nil {
		m := *c.match
		s.Match = &m
	}
	return s
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// SetCompany replaces the company field.
func (c *Controller) SetCompany(v string) {
	c.mu.Lock()
	c.company = v
	c.mu.Unlock()
}

// SetRole replaces the role field.
func (c *Controller) SetRole(v string) {
	c.mu.Lock()
	c.role = v
	c.mu.Unlock()
}

// SetJobDescription replaces the JD field.
func (c *Controller) SetJobDescription(v string) {
	c.mu.Lock()
	c.jd = v
	c.mu.Unlock()
}

// SetResumePath selects the résumé file to upload.
func (c *Controller) SetResumePath(v string) {
	c.mu.Lock()
	c.resumePath = v
	c.mu.Unlock()
}

// form is the trimmed field values at one instant.
type form struct {
	company, role, jd, resume string
}

func (c *Controller) form() form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return form{
		company: strings.TrimSpace(c.company),
		role:    strings.TrimSpace(c.role),
		jd:      strings.TrimSpace(c.jd),
		resume:  strings.TrimSpace(c.resumePath),
	}
}

func required(msg string, fields ...string) func() error {
	return func() error {
		for _, f := range fields {
			if f == "" {
				return &model.ValidationError{Message: msg}
			}
		}
		return nil
	}
}

// RequestExtraction asks the host to run the extractor in the active tab.
// It returns once the injection has been requested; the posting arrives
// later through Deliver. A returned error has already been rendered.
func (c *Controller) RequestExtraction(ctx context.Context) error {
	c.setStatus(progress("⏳ Extracting JD..."))

	tab, err := c.host.ActiveTab(ctx)
	if err != nil {
		c.logger.Error("active tab lookup failed", "error", err)
		c.setStatus(failure(err, ""))
		return err
	}

	requestID := c.newID()
	if err := c.host.Inject(ctx, tab, requestID, c.sender); err != nil {
		c.logger.Error("inject extractor", "tab", tab.ID, "url", tab.URL, "error", err)
		c.setStatus(Status{Kind: StatusError, Text: "❌ Failed to inject scraper."})
		return fmt.Errorf("inject extractor: %w", err)
	}
	c.logger.Debug("extractor injected", "request_id", requestID, "url", tab.URL)
	return nil
}

// Deliver applies an extraction result: the fields are overwritten, even
// with empty values, and the status reports success.
func (c *Controller) Deliver(p model.JobPosting) {
	c.mu.Lock()
	c.company, c.role, c.jd = p.Company, p.Role, p.JobDescription
	c.status = success("✅ JD scraped successfully!")
	c.mu.Unlock()
}

// UploadAction uploads the selected résumé.
func (c *Controller) UploadAction() Action {
	f := c.form()
	return Action{
		Name:     "upload_resume",
		Validate: required("Please select a resume file (.docx or .pdf)", f.resume),
		Progress: "⏳ Uploading resume...",
		Call: func(ctx context.Context) error {
			return c.backend.UploadResume(ctx, f.resume)
		},
		Success:  "✅ Resume uploaded and parsed.",
		Fallback: "Upload failed",
	}
}

// TailorAction tailors the résumé to the posting in the form.
func (c *Controller) TailorAction() Action {
	f := c.form()
	return Action{
		Name:     "tailor",
		Validate: required("Please fill company, role, and JD.", f.company, f.role, f.jd),
		Progress: "⏳ Tailoring resume...",
		Call: func(ctx context.Context) error {
			return c.backend.Tailor(ctx, model.JobPosting{Company: f.company, Role: f.role, JobDescription: f.jd})
		},
		Success:   "✅ Resume tailored. You can now generate files.",
		Fallback:  "Unknown error",
		OnSuccess: func(c *Controller) { c.downloads = true },
	}
}

// GenerateAction asks the backend to save the tailored résumé as format.
func (c *Controller) GenerateAction(format model.DocFormat) Action {
	f := c.form()
	label := strings.ToUpper(string(format))
	return Action{
		Name:     "generate_" + string(format),
		Validate: required("Please enter company and role before generating files.", f.company, f.role),
		Progress: "💾 Saving " + label + "...",
		Call: func(ctx context.Context) error {
			return c.backend.Generate(ctx, format, f.company, f.role)
		},
		Success:   "✅ " + label + " saved in Resumes folder.",
		Fallback:  "Failed to save " + label,
		OnSuccess: func(c *Controller) { c.downloads = true },
	}
}

// DownloadAction is GenerateAction for the panel, where downloads are only
// offered once a tailor has succeeded.
func (c *Controller) DownloadAction(format model.DocFormat) Action {
	a := c.GenerateAction(format)
	c.mu.Lock()
	ready := c.downloads
	c.mu.Unlock()

	check := a.Validate
	a.Validate = func() error {
		if !ready {
			return &model.ValidationError{Message: "Tailor the resume first to enable downloads."}
		}
		return check()
	}
	return a
}

// AppliedAction records an application for the company and role in the form.
func (c *Controller) AppliedAction() Action {
	f := c.form()
	return Action{
		Name:     "applied",
		Validate: required("Please enter company and role before marking applied.", f.company, f.role),
		Progress: "📌 Saving application...",
		Call: func(ctx context.Context) error {
			return c.backend.MarkApplied(ctx, f.company, f.role)
		},
		Success:  fmt.Sprintf("✅ Marked as Applied for %s - %s.", f.company, f.role),
		Fallback: "Failed to save application",
	}
}

// MatchAction scores the résumé against the JD and shows the tiered result.
func (c *Controller) MatchAction() Action {
	f := c.form()
	var score model.Score
	return Action{
		Name:     "match_score",
		Validate: required("Please paste a JD first.", f.jd),
		Progress: "⏳ Checking match score with AI...",
		Call: func(ctx context.Context) error {
			s, err := c.backend.MatchScore(ctx, f.jd)
			score = s
			return err
		},
		Success:  "✅ Match score ready.",
		Fallback: "Failed to calculate match score",
		OnSuccess: func(c *Controller) {
			m := NewMatch(score.Score, score.Reason)
			c.match = &m
		},
	}
}

// Upload runs UploadAction.
func (c *Controller) Upload(ctx context.Context) error { return c.Run(ctx, c.UploadAction()) }

// Tailor runs TailorAction.
func (c *Controller) Tailor(ctx context.Context) error { return c.Run(ctx, c.TailorAction()) }

// Generate runs GenerateAction.
func (c *Controller) Generate(ctx context.Context, format model.DocFormat) error {
	return c.Run(ctx, c.GenerateAction(format))
}

// MarkApplied runs AppliedAction.
func (c *Controller) MarkApplied(ctx context.Context) error { return c.Run(ctx, c.AppliedAction()) }

// MatchScore runs MatchAction.
func (c *Controller) MatchScore(ctx context.Context) error { return c.Run(ctx, c.MatchAction()) }
