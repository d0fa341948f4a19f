package search

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jonathan/song-scout/internal/types"
)

const (
	// DefaultTimeout bounds a single backend request.
	DefaultTimeout = 20 * time.Second

	// DefaultDuckDuckGoURL is the no-JavaScript DuckDuckGo endpoint.
	DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

	defaultUserAgent = "Mozilla/5.0 (compatible; SongScout/1.0)"
)

// safeSearchParams maps safesearch names to DuckDuckGo kp values.
var safeSearchParams = map[string]string{
	"off":      "-2",
	"moderate": "-1",
	"strict":   "1",
}

// DuckDuckGo scrapes the DuckDuckGo HTML results page.
type DuckDuckGo struct {
	client     *http.Client
	baseURL    string
	region     string
	safeSearch string
	userAgent  string
	policy     *bluemonday.Policy
}

// DuckDuckGoOption configures a DuckDuckGo backend.
type DuckDuckGoOption func(*DuckDuckGo)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if c != nil {
			d.client = c
		}
	}
}

// WithBaseURL points the backend at another endpoint.
func WithBaseURL(u string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if u != "" {
			d.baseURL = u
		}
	}
}

// WithRegion sets the kl region code, e.g. "wt-wt" for no region.
func WithRegion(region string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if region != "" {
			d.region = region
		}
	}
}

// WithSafeSearch sets safesearch to off, moderate or strict.
func WithSafeSearch(level string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if _, ok := safeSearchParams[level]; ok {
			d.safeSearch = level
		}
	}
}

// NewDuckDuckGo creates a DuckDuckGo backend with region wt-wt and safesearch off.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		client:     &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultDuckDuckGoURL,
		region:     "wt-wt",
		safeSearch: "off",
		userAgent:  defaultUserAgent,
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements Backend.
func (d *DuckDuckGo) Name() string {
	return BackendDuckDuckGo
}

// Search implements Backend.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", d.region)
	params.Set("kp", safeSearchParams[d.safeSearch])

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Backend: d.Name(), Query: query, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &Error{Backend: d.Name(), Query: query, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Backend: d.Name(), Query: query, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &Error{Backend: d.Name(), Query: query, Message: "failed to parse HTML", Cause: err}
	}
	return d.parse(doc, maxResults), nil
}

func (d *DuckDuckGo) parse(doc *goquery.Document, maxResults int) []types.SearchResult {
	var results []types.SearchResult
	doc.Find("div.result").Not(".result--ad").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")
		titleHTML, _ := link.Html()
		snippetHTML, _ := s.Find(".result__snippet").First().Html()

		results = append(results, types.SearchResult{
			Title: d.plainText(titleHTML),
			Body:  d.plainText(snippetHTML),
			Href:  unwrapRedirect(href),
		})
		return true
	})
	return results
}

// plainText strips all markup and collapses whitespace.
func (d *DuckDuckGo) plainText(fragment string) string {
	text := html.UnescapeString(d.policy.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect links to the target URL.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" && strings.HasPrefix(u.Path, "/l/") {
		return target
	}
	return href
}
