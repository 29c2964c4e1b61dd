package lookup

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/schema"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbelt/tools", "lookup")

//go:generate mockgen -source=lookup.go -destination=../../mocks/mocktools/lookup_mock.gen.go -package mocktools

// ToolName is the default name of the lookup tool
const ToolName = "wikipedia"

// Description is the default description of the lookup tool
const Description = "A wrapper around Wikipedia. " +
	"Useful for when you need to answer general questions about " +
	"people, places, companies, facts, historical events, or other subjects. " +
	"Input should be a search query."

// DefaultMaxChars is the default limit of the returned summary
const DefaultMaxChars = 4000

// Backend is a reference lookup service
type Backend interface {
	// Lookup returns the summary of the top-ranked result for the query.
	// It returns tools.ErrNotFound if the service has no results.
	Lookup(ctx context.Context, query string) (*Page, error)
}

// Page is the top-ranked result of a lookup
type Page struct {
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
}

// Request represents the tool input
type Request struct {
	Query string `json:"query" yaml:"query" validate:"required"`
}

// Result represents the tool output
type Result struct {
	Page
}

func (r *Result) String() string {
	return fmt.Sprintf("Page: %s\nSummary: %s", r.Title, r.Summary)
}

// Tool is a reference lookup tool
type Tool struct {
	name        string
	description string
	maxChars    int
	backend     Backend
}

var _ tools.Tool[Request, Result] = (*Tool)(nil)

// Option configures the Tool
type Option func(*Tool)

// WithName overrides the tool name
func WithName(name string) Option {
	return func(t *Tool) {
		t.name = name
	}
}

// WithDescription overrides the tool description
func WithDescription(description string) Option {
	return func(t *Tool) {
		t.description = description
	}
}

// WithMaxChars limits the size of the returned summary,
// 0 means no limit.
func WithMaxChars(n int) Option {
	return func(t *Tool) {
		t.maxChars = n
	}
}

// New returns the lookup tool over the backend
func New(backend Backend, opts ...Option) (*Tool, error) {
	if backend == nil {
		return nil, errors.New("lookup backend is required")
	}
	t := &Tool{
		name:        ToolName,
		description: Description,
		maxChars:    DefaultMaxChars,
		backend:     backend,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := schema.ValidateName(t.name); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() schema.Parameters {
	return schema.Parameters{
		schema.String("query", "Input search query"),
	}
}

// Run returns the top-ranked page for the query.
// Failures of the backend are returned as is.
func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.Wrap(tools.ErrInvalidArguments, "empty query")
	}

	page, err := t.backend.Lookup(ctx, query)
	if err != nil {
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", t.name,
			"query", query,
			"err", err.Error(),
		)
		return nil, err
	}
	if page == nil {
		return nil, errors.Wrapf(tools.ErrNotFound, "no page for %q", query)
	}

	res := &Result{Page: *page}
	if t.maxChars > 0 {
		res.Summary = truncate(res.Summary, t.maxChars)
	}
	return res, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.Call[Request, Result](ctx, t, input)
}

// truncate cuts s to at most n bytes on a rune boundary
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
