// Package host provides the places an extractor can run: a live browser tab,
// a fetched URL, or a saved HTML file.
package host

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/tailorin/internal/extract"
	"github.com/amishk599/tailorin/internal/model"
)

var (
	// ErrNoActiveTab is returned when there is no page to extract from.
	ErrNoActiveTab = errors.New("no active tab")
	// ErrRestrictedPage is returned for pages a script may not be injected into.
	ErrRestrictedPage = errors.New("restricted page")
)

// restrictedHosts refuse script injection even over https.
var restrictedHosts = []string{
	"chromewebstore.google.com",
	"chrome.google.com",
	"microsoftedge.microsoft.com",
}

// CheckInjectable returns ErrRestrictedPage for browser-internal pages
// (chrome://, about:, extension pages, web stores) and anything that isn't
// http, https or file.
func CheckInjectable(tab model.Tab) error {
	u, err := url.Parse(tab.URL)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%w: %q", ErrRestrictedPage, tab.URL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "file":
	default:
		return fmt.Errorf("%w: %s", ErrRestrictedPage, tab.URL)
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range restrictedHosts {
		if host == h {
			return fmt.Errorf("%w: %s", ErrRestrictedPage, tab.URL)
		}
	}
	return nil
}

// runExtractor parses r and hands the document to the extractor. A page
// that fails to parse still produces a (empty) message.
func runExtractor(ex *extract.Extractor, logger *slog.Logger, r io.Reader, pageURL, requestID string, send model.Sender) {
	var doc *goquery.Document
	if r != nil {
		d, err := goquery.NewDocumentFromReader(r)
		if err != nil {
			logger.Error("parse page", "url", pageURL, "error", err)
		} else {
			doc = d
		}
	}
	ex.Run(doc, pageURL, requestID, send)
}
