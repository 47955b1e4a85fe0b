// Package warranty looks up Dell warranty state for a service tag by
// scraping the vendor support page. The parser only has to understand the
// one page layout the support site currently serves.
package warranty

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gridtools/config"
)

// Entitlement is one warranty/service line item on the support page.
type Entitlement struct {
	Description string `json:"description"`
	EndDate     string `json:"end_date"`
}

// Record is the scraped warranty state of one service tag.
type Record struct {
	ServiceTag   string        `json:"service_tag"`
	Model        string        `json:"model"`
	ShipDate     string        `json:"ship_date"`
	Entitlements []Entitlement `json:"entitlements"`
}

var (
	modelRe = regexp.MustCompile(`(?is)<span[^>]*class="product-title"[^>]*>\s*([^<]+?)\s*</span>`)
	shipRe  = regexp.MustCompile(`(?is)ship(?:ping)?\s+date[^<]*</span>\s*<span[^>]*>\s*([0-9/]+)\s*</span>`)
	entRe   = regexp.MustCompile(`(?is)<tr[^>]*class="entitlement"[^>]*>\s*<td[^>]*>\s*([^<]+?)\s*</td>\s*<td[^>]*>[^<]*</td>\s*<td[^>]*>\s*([0-9/]+)\s*</td>`)
)

// Package-level default Client for convenience wiring.
var defaultClient *Client

// SetDefault sets the package-level default warranty Client.
func SetDefault(c *Client) { defaultClient = c }

// Default returns the package-level default warranty Client.
func Default() *Client { return defaultClient }

// Client fetches and parses support pages. The HTTP client is replaceable
// for tests against a local httptest server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func New(cfg config.Warranty, logger *slog.Logger) *Client {
	timeout, err := time.ParseDuration(cfg.HTTPTimeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Lookup fetches the support page for one service tag and extracts model,
// ship date and entitlement rows. A page without a recognizable product
// section is an error; the caller decides whether to continue its batch.
func (c *Client) Lookup(ctx context.Context, tag string) (*Record, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("warranty page fetch failed", "tag", tag, "url", url, "err", err)
		return nil, fmt.Errorf("failed to fetch warranty page for %s", tag)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("warranty page returned non-200", "tag", tag, "status", resp.StatusCode)
		return nil, fmt.Errorf("warranty page for %s returned status %d", tag, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parsePage(tag, string(body))
}

func parsePage(tag, page string) (*Record, error) {
	m := modelRe.FindStringSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("no warranty information found for %s", tag)
	}
	rec := &Record{ServiceTag: tag, Model: m[1]}
	if s := shipRe.FindStringSubmatch(page); s != nil {
		rec.ShipDate = s[1]
	}
	for _, e := range entRe.FindAllStringSubmatch(page, -1) {
		rec.Entitlements = append(rec.Entitlements, Entitlement{
			Description: e[1],
			EndDate:     e[2],
		})
	}
	return rec, nil
}
