// Package fema scrapes official disaster updates from the FEMA
// press-release listing page.
package fema

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// minHeadlineLen is the minimum visible text length for an anchor to count
// as a substantive headline. Shorter anchors are navigational chrome
// ("Home", "Next page"). Tune with care: raising it drops short but real
// headlines, lowering it lets menu links through.
const minHeadlineLen = 20

// Client implements domain.UpdatesFetcher by scraping the press-release page.
type Client struct {
	httpClient *http.Client
	pageURL    string
	logger     *slog.Logger
}

// NewClient creates a scraper for the given press-release page URL.
func NewClient(pageURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		pageURL: pageURL,
		logger:  logger,
	}
}

// FetchUpdates downloads the page and returns every qualifying headline link.
func (c *Client) FetchUpdates(ctx context.Context) ([]domain.OfficialUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch press releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("press-release page error: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	updates := extractUpdates(doc)
	c.logger.Debug("scraped official updates", "count", len(updates))
	return updates, nil
}

// extractUpdates walks the document and collects anchors whose visible text
// exceeds minHeadlineLen and which carry a non-empty href.
func extractUpdates(doc *html.Node) []domain.OfficialUpdate {
	updates := []domain.OfficialUpdate{}
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			continue
		}
		title := strings.TrimSpace(anchorText(n))
		href := attr(n, "href")
		if len(title) > minHeadlineLen && href != "" {
			updates = append(updates, domain.OfficialUpdate{Title: title, URL: href})
		}
	}
	return updates
}

// anchorText concatenates the text nodes under an anchor.
func anchorText(n *html.Node) string {
	var sb strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			sb.WriteString(d.Data)
		}
	}
	return sb.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
