package host

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/amishk599/tailorin/internal/extract"
	"github.com/amishk599/tailorin/internal/model"
)

// Ensure URLHost implements model.Host.
var _ model.Host = (*URLHost)(nil)

// URLHost treats a single http(s) URL as the active tab and fetches it with colly.
type URLHost struct {
	pageURL   string
	userAgent string
	timeout   time.Duration
	extractor *extract.Extractor
	logger    *slog.Logger
}

// NewURLHost returns a host whose only tab is pageURL.
func NewURLHost(pageURL, userAgent string, timeout time.Duration, ex *extract.Extractor, logger *slog.Logger) *URLHost {
	return &URLHost{
		pageURL:   pageURL,
		userAgent: userAgent,
		timeout:   timeout,
		extractor: ex,
		logger:    logger,
	}
}

// ActiveTab returns the configured URL.
func (h *URLHost) ActiveTab(_ context.Context) (model.Tab, error) {
	if h.pageURL == "" {
		return model.Tab{}, ErrNoActiveTab
	}
	return model.Tab{ID: h.pageURL, URL: h.pageURL}, nil
}

// Inject fetches the page in the background and extracts from it. Fetch
// errors degrade to an empty posting rather than failing the injection.
func (h *URLHost) Inject(_ context.Context, tab model.Tab, requestID string, send model.Sender) error {
	if err := CheckInjectable(tab); err != nil {
		return err
	}
	go h.visit(tab, requestID, send)
	return nil
}

func (h *URLHost) visit(tab model.Tab, requestID string, send model.Sender) {
	c := colly.NewCollector(colly.UserAgent(h.userAgent))
	c.SetRequestTimeout(h.timeout)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		h.logger.Error("fetch page", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	if err := c.Visit(tab.URL); err != nil {
		h.logger.Error("visit page", "url", tab.URL, "error", err)
	}

	if body == nil {
		runExtractor(h.extractor, h.logger, nil, tab.URL, requestID, send)
		return
	}
	runExtractor(h.extractor, h.logger, bytes.NewReader(body), tab.URL, requestID, send)
}
