package search

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"

	"github.com/jonathan/song-scout/internal/types"
)

// customSearchMaxNum is the largest page Programmable Search returns per call.
const customSearchMaxNum = 10

// CustomSearch queries Google Programmable Search.
type CustomSearch struct {
	svc *customsearch.Service
	cx  string
}

// NewCustomSearch creates a CustomSearch backend for engine cx. A non-nil
// httpClient is copied and its transport wrapped so the key still goes out on
// every request; option.WithHTTPClient otherwise drops option.WithAPIKey.
func NewCustomSearch(ctx context.Context, apiKey, cx string, httpClient *http.Client, opts ...option.ClientOption) (*CustomSearch, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("google search requires an API key and a search engine id (GOOGLE_CSE_API_KEY, GOOGLE_CSE_CX)")
	}
	if httpClient != nil {
		keyed := *httpClient
		base := keyed.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		keyed.Transport = &transport.APIKey{Key: apiKey, Transport: base}
		opts = append(opts, option.WithHTTPClient(&keyed))
	} else {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &CustomSearch{svc: svc, cx: cx}, nil
}

// Name implements Backend.
func (c *CustomSearch) Name() string {
	return BackendGoogle
}

// Search implements Backend.
func (c *CustomSearch) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	num := int64(min(max(maxResults, 1), customSearchMaxNum))

	resp, err := c.svc.Cse.List().Cx(c.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		return nil, &Error{Backend: c.Name(), Query: query, Message: "request failed", Cause: err}
	}

	results := make([]types.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, types.SearchResult{
			Title: item.Title,
			Body:  item.Snippet,
			Href:  item.Link,
		})
	}
	return results, nil
}
