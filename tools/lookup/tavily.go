package lookup

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/xlog"
)

// TavilyBackend looks up the Tavily search API,
// and returns the top-scored result.
type TavilyBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Backend = (*TavilyBackend)(nil)

// NewTavily returns the Tavily backend,
// if baseURL is empty, the client default is used.
func NewTavily(apiKey, baseURL string, httpClient *http.Client) (*TavilyBackend, error) {
	if apiKey == "" {
		return nil, errors.New("tavily API key is required")
	}
	return &TavilyBackend{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// Lookup returns the content of the top-scored search result
func (b *TavilyBackend) Lookup(ctx context.Context, query string) (*Page, error) {
	client := tavilygo.NewClient(b.apiKey)
	if b.baseURL != "" {
		client.BaseURL = b.baseURL
	}
	if b.httpClient != nil {
		client.HTTPClient = b.httpClient
	}

	searchResp, err := tavilygo.Search(client, tavilyModels.SearchRequest{
		Query:       query,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, tools.NetworkError(err, "failed to perform search")
	}

	results := searchResp.Results
	if len(results) == 0 {
		return nil, errors.Wrapf(tools.ErrNotFound, "no search results for %q", query)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	top := results[0]
	logger.ContextKV(ctx, xlog.DEBUG,
		"url", top.URL,
		"score", top.Score,
		"results", len(results),
	)

	return &Page{
		Title:   top.Title,
		Summary: strings.TrimSpace(top.Content),
	}, nil
}
