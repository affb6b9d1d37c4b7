package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Chain is an ordered list of CSS selectors for one field. Earlier entries
// win: the chain stops at the first selector that matches anything, even if
// a later selector matches an element earlier in the document.
type Chain []string

// First returns the first element matched by the highest-priority selector,
// or nil when no selector in the chain matches.
func (c Chain) First(root *goquery.Selection) *goquery.Selection {
	if root == nil {
		return nil
	}
	for _, sel := range c {
		if m := root.Find(sel).First(); m.Length() > 0 {
			return m
		}
	}
	return nil
}

// Validate reports the first selector in the chain that doesn't parse.
func (c Chain) Validate() error {
	for _, sel := range c {
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("selector %q: %w", sel, err)
		}
	}
	return nil
}

// Rules holds the selector chains for the three fields of a posting.
type Rules struct {
	Company     Chain
	Role        Chain
	Description Chain
}

// Validate checks every chain.
func (r Rules) Validate() error {
	fields := []struct {
		name  string
		chain Chain
	}{
		{"company", r.Company},
		{"role", r.Role},
		{"description", r.Description},
	}
	for _, f := range fields {
		if err := f.chain.Validate(); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// SiteRules applies Rules to pages whose host is one of Hosts or a subdomain of one.
type SiteRules struct {
	Name  string
	Hosts []string
	Rules Rules
}

func (s SiteRules) matches(host string) bool {
	for _, h := range s.Hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// DefaultRules covers LinkedIn job pages, old and new layouts, followed by
// generic schema.org and common class-name fallbacks.
var DefaultRules = Rules{
	Company: Chain{
		".job-details-jobs-unified-top-card__company-name a",
		".topcard__org-name-link",
		".jobs-unified-top-card__company-name",
		"[itemprop='hiringOrganization'] [itemprop='name']",
	},
	Role: Chain{
		"h1.t-24",
		".topcard__title",
		"[itemprop='title']",
		"h1",
	},
	Description: Chain{
		".jobs-box__html-content",
		".jobs-description-content__text",
		".jobs-description__container",
		"[itemprop='description']",
		"#job-description",
		".job-description",
	},
}

// BuiltinSites are ATS boards whose layout differs from LinkedIn's.
var BuiltinSites = []SiteRules{
	{
		Name:  "greenhouse",
		Hosts: []string{"greenhouse.io"},
		Rules: Rules{
			Company:     Chain{".company-name", ".job__header .company"},
			Role:        Chain{".app-title", ".job__title h1", "h1.section-header", "h1"},
			Description: Chain{".job__description", "#content"},
		},
	},
	{
		Name:  "lever",
		Hosts: []string{"lever.co"},
		Rules: Rules{
			Company:     Chain{".main-footer-text a", ".posting-company"},
			Role:        Chain{".posting-headline h2", "h2"},
			Description: Chain{"[data-qa='job-description']", ".posting-page .section-wrapper", ".content"},
		},
	},
	{
		Name:  "ashby",
		Hosts: []string{"ashbyhq.com"},
		Rules: Rules{
			Company:     Chain{"[class*='_navLogo'] img + span", "[class*='companyName']"},
			Role:        Chain{"h1[class*='_title']", "h1"},
			Description: Chain{"[class*='_descriptionText']", "[class*='descriptionText']"},
		},
	},
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}
