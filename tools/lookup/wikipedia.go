package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/tidwall/gjson"
)

// DefaultLanguage is the default Wikipedia language edition
const DefaultLanguage = "en"

// UserAgent is sent with the requests to public services
const UserAgent = "toolbelt/1.0 (https://github.com/effective-security/toolbelt)"

// WikipediaBackend looks up the MediaWiki action API,
// restricted to the single top-ranked search result.
type WikipediaBackend struct {
	baseURL    string
	httpClient *http.Client
}

var _ Backend = (*WikipediaBackend)(nil)

// NewWikipedia returns the backend for the language edition,
// if baseURL is empty, the public endpoint is used.
func NewWikipedia(baseURL, language string, httpClient *http.Client) *WikipediaBackend {
	lang := values.StringsCoalesce(language, DefaultLanguage)
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WikipediaBackend{
		baseURL:    values.StringsCoalesce(baseURL, fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)),
		httpClient: httpClient,
	}
}

// BaseURL returns the API endpoint
func (b *WikipediaBackend) BaseURL() string {
	return b.baseURL
}

// Lookup returns the intro of the top-ranked page for the query
func (b *WikipediaBackend) Lookup(ctx context.Context, query string) (*Page, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("generator", "search")
	q.Set("gsrsearch", query)
	q.Set("gsrlimit", "1")
	q.Set("prop", "extracts")
	q.Set("exintro", "1")
	q.Set("explaintext", "1")
	q.Set("redirects", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, tools.NetworkError(err, "failed to call wikipedia")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tools.NetworkError(err, "failed to read wikipedia response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, tools.NewStatusError(resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, tools.DecodeError(errors.New("invalid JSON"), "failed to decode wikipedia response")
	}

	res := gjson.ParseBytes(body)
	if e := res.Get("error.info"); e.Exists() {
		return nil, tools.ServiceError(errors.New(e.String()), "wikipedia")
	}

	// pages are keyed by search rank, the lowest index wins
	var top gjson.Result
	res.Get("query.pages").ForEach(func(_, page gjson.Result) bool {
		if !top.Exists() || page.Get("index").Int() < top.Get("index").Int() {
			top = page
		}
		return true
	})
	if !top.Exists() {
		return nil, errors.Wrapf(tools.ErrNotFound, "no wikipedia page for %q", query)
	}

	return &Page{
		Title:   top.Get("title").String(),
		Summary: strings.TrimSpace(top.Get("extract").String()),
	}, nil
}
