// Package extract recovers company, role and job description text from a
// job listing page.
package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/tailorin/internal/model"
)

// Extractor reads a posting out of a parsed page. It never modifies the page.
type Extractor struct {
	sites    []SiteRules
	fallback Rules
	logger   *slog.Logger
}

// New returns an extractor that tries the extra site rules first, then the
// built-in ATS rules, then DefaultRules.
func New(extra []SiteRules, logger *slog.Logger) *Extractor {
	sites := make([]SiteRules, 0, len(extra)+len(BuiltinSites))
	sites = append(sites, extra...)
	sites = append(sites, BuiltinSites...)
	return &Extractor{
		sites:    sites,
		fallback: DefaultRules,
		logger:   logger,
	}
}

// RulesFor picks the rule set for a page URL.
func (e *Extractor) RulesFor(pageURL string) Rules {
	host := hostOf(pageURL)
	if host != "" {
		for _, s := range e.sites {
			if s.matches(host) {
				return s.Rules
			}
		}
	}
	return e.fallback
}

// Extract reads the three posting fields from doc. A field whose selectors
// match nothing, or whose read fails, comes back as "". A nil doc yields an
// empty posting.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) model.JobPosting {
	if doc == nil {
		e.logger.Warn("no document to extract from", "url", pageURL)
		return model.JobPosting{}
	}
	rules := e.RulesFor(pageURL)
	return model.JobPosting{
		Company:        e.field(doc, "company", rules.Company, trimmed),
		Role:           e.field(doc, "role", rules.Role, trimmed),
		JobDescription: e.field(doc, "description", rules.Description, collapsed),
	}
}

// Run extracts from doc and sends exactly one jd_data message, whatever
// was or wasn't found.
func (e *Extractor) Run(doc *goquery.Document, pageURL, requestID string, send model.Sender) {
	p := e.Extract(doc, pageURL)
	e.logger.Debug("extraction complete",
		"request_id", requestID,
		"url", pageURL,
		"company", p.Company != "",
		"role", p.Role != "",
		"jd_len", len(p.JobDescription),
	)
	send.Send(model.NewJobDataMessage(requestID, p))
}

func (e *Extractor) field(doc *goquery.Document, name string, chain Chain, read func(*goquery.Selection) string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction error", "field", name, "error", fmt.Sprint(r))
			out = ""
		}
	}()
	sel := chain.First(doc.Selection)
	if sel == nil {
		return ""
	}
	return read(sel)
}

func trimmed(sel *goquery.Selection) string {
	return strings.TrimSpace(innerText(sel))
}

func collapsed(sel *goquery.Selection) string {
	return NormalizeDescription(innerText(sel))
}
