// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search normalizes a query against one external literature source
// into uniform Paper records.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/literature-helper/pkg/types"
)

var (
	// ErrEmptyQuery is returned when a source is asked to search for nothing.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrUnknownSource is returned when a source selector matches no adapter.
	ErrUnknownSource = errors.New("unknown source")

	// ErrUnexpectedMarkup is returned when a scraped page does not match the
	// expected result selectors.
	ErrUnexpectedMarkup = errors.New("result page does not match expected markup")
)

// Source searches a single literature source. Each strategy (scrape, API,
// feed) implements this interface.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.Paper, error)
}

// Fetch runs query against src and truncates the result to limit. A
// source returning fewer papers than requested is not an error.
func Fetch(ctx context.Context, src Source, query string, limit int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	papers, err := src.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

// Registry resolves source selectors to adapters.
type Registry struct {
	sources map[string]Source
}

// NewRegistry indexes sources by name.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

// sourceAliases maps display names to adapter names.
var sourceAliases = map[string]string{
	"google_scholar":  "scholar",
	"semantic":        "semantic_scholar",
	"semanticscholar": "semantic_scholar",
	"s2":              "semantic_scholar",
	"open_alex":       "openalex",
}

var selectorSeparators = regexp.MustCompile(`[\s\-]+`)

// NormalizeSourceName canonicalizes a selector such as "Google Scholar"
// or "semantic-scholar" to an adapter name.
func NormalizeSourceName(name string) string {
	n := selectorSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	if alias, ok := sourceAliases[n]; ok {
		return alias
	}
	return n
}

// Lookup returns the adapter for a selector.
func (r *Registry) Lookup(name string) (Source, error) {
	s, ok := r.sources[NormalizeSourceName(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownSource, name, strings.Join(r.Names(), ", "))
	}
	return s, nil
}

// Names lists registered adapters in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for n := range r.sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewSources builds every adapter from configuration.
func NewSources(cfg types.Config, client *http.Client) []Source {
	ua := cfg.HTTP.UserAgent
	return []Source{
		&ScholarSource{
			Client:     client,
			ProxyURL:   cfg.Search.ScrapeProxyURL,
			APIKey:     cfg.Search.ScrapeProxyKey,
			ScholarURL: cfg.Search.ScholarURL,
			UserAgent:  ua,
		},
		&SemanticScholarSource{
			Client:    client,
			BaseURL:   cfg.Search.SemanticScholarURL,
			APIKey:    cfg.Search.SemanticScholarKey,
			UserAgent: ua,
		},
		&ArxivSource{
			Client:    client,
			BaseURL:   cfg.Search.ArxivURL,
			UserAgent: ua,
		},
		&OpenAlexSource{
			Client:    client,
			BaseURL:   cfg.Search.OpenAlexURL,
			Email:     cfg.Search.OpenAlexEmail,
			UserAgent: ua,
		},
	}
}

// doiPattern matches DOIs embedded in links and text.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `?#&]+`)

// findDOI returns the first DOI-shaped substring of s.
func findDOI(s string) string {
	m := doiPattern.FindString(s)
	return strings.TrimRight(m, ".,;:)")
}

// cleanText collapses whitespace, including non-breaking spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

