package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/amishk599/tailorin/internal/extract"
	"github.com/amishk599/tailorin/internal/model"
)

// Ensure ChromeHost implements model.Host.
var _ model.Host = (*ChromeHost)(nil)

// ChromeHost talks to a Chromium browser started with --remote-debugging-port.
type ChromeHost struct {
	devtoolsURL string
	httpClient  *http.Client
	extractor   *extract.Extractor
	readTimeout time.Duration
	logger      *slog.Logger
}

// NewChromeHost returns a host for the browser whose DevTools HTTP endpoint
// is devtoolsURL, e.g. http://127.0.0.1:9222.
func NewChromeHost(devtoolsURL string, httpClient *http.Client, ex *extract.Extractor, readTimeout time.Duration, logger *slog.Logger) *ChromeHost {
	return &ChromeHost{
		devtoolsURL: strings.TrimRight(devtoolsURL, "/"),
		httpClient:  httpClient,
		extractor:   ex,
		readTimeout: readTimeout,
		logger:      logger,
	}
}

// devtoolsTarget is one entry of the DevTools /json/list response.
type devtoolsTarget struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ActiveTab returns the most recently focused page. The browser lists page
// targets in activation order, so that is the first "page" entry.
func (h *ChromeHost) ActiveTab(ctx context.Context) (model.Tab, error) {
	targets, err := h.listTargets(ctx)
	if err != nil {
		return model.Tab{}, err
	}
	for _, t := range targets {
		if t.Type == "page" {
			return model.Tab{ID: t.ID, URL: t.URL, Title: t.Title}, nil
		}
	}
	return model.Tab{}, ErrNoActiveTab
}

func (h *ChromeHost) listTargets(ctx context.Context) ([]devtoolsTarget, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.devtoolsURL+"/json/list", nil)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list tabs: unexpected status %d", resp.StatusCode)
	}

	var targets []devtoolsTarget
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	return targets, nil
}

// Inject attaches to the tab and starts reading its live DOM. Attach
// failures are returned; everything after that is reported through send.
func (h *ChromeHost) Inject(ctx context.Context, tab model.Tab, requestID string, send model.Sender) error {
	if err := CheckInjectable(tab); err != nil {
		return err
	}

	// A fresh remote allocator per injection makes the tab context the
	// "first" one, so cancelling it drops the connection without closing
	// the user's tab.
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), h.devtoolsURL)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithTargetID(target.ID(tab.ID)))

	// The first Run owns the connection, so it must not get a deadline of
	// its own; the timer bounds the attach instead.
	timer := time.AfterFunc(h.readTimeout, tabCancel)
	err := chromedp.Run(tabCtx)
	timer.Stop()
	if err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("attach to tab %s: %w", tab.ID, err)
	}

	go func() {
		defer allocCancel()
		defer tabCancel()

		var markup string
		readCtx, cancel := context.WithTimeout(tabCtx, h.readTimeout)
		defer cancel()
		if err := chromedp.Run(readCtx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
			h.logger.Error("read tab dom", "tab", tab.ID, "url", tab.URL, "error", err)
			runExtractor(h.extractor, h.logger, nil, tab.URL, requestID, send)
			return
		}
		runExtractor(h.extractor, h.logger, strings.NewReader(markup), tab.URL, requestID, send)
	}()
	return nil
}
