// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// ArxivSource queries the arXiv export API, which answers with an Atom feed.
type ArxivSource struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search queries the arXiv API and returns up to limit papers.
func (s *ArxivSource) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 20
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		s.BaseURL, q, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.Do(s.Client, req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		p := types.Paper{
			Title:    cleanText(item.Title),
			URL:      item.Link,
			Abstract: cleanText(item.Description),
			Source:   "arxiv",
		}
		if p.Title == "" {
			continue
		}
		for _, a := range item.Authors {
			if a != nil && a.Name != "" {
				p.Authors = append(p.Authors, cleanText(a.Name))
			}
		}
		p.AuthorsInfo = strings.Join(p.Authors, ", ")
		if item.PublishedParsed != nil {
			p.Year = item.PublishedParsed.Year()
		}
		p.PDFURL = arxivPDFLink(item)
		p.DOI = arxivExtension(item, "doi")
		p.Venue = cleanText(arxivExtension(item, "journal_ref"))
		papers = append(papers, p)
	}
	return papers, nil
}

// buildArxivQuery turns free text into an all-fields conjunction
// ("all:graph+AND+all:networks").
func buildArxivQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = "all:" + url.QueryEscape(t)
	}
	return strings.Join(parts, "+AND+")
}

// arxivPDFLink returns a /pdf/ link when the entry exposes one, otherwise it
// derives it from the abstract page URL. gofeed drops rel="related" links.
func arxivPDFLink(item *gofeed.Item) string {
	for _, l := range item.Links {
		if strings.Contains(l, "/pdf/") {
			return l
		}
	}
	if strings.Contains(item.Link, "/abs/") {
		return strings.Replace(item.Link, "/abs/", "/pdf/", 1)
	}
	return ""
}

// arxivExtension reads an arxiv: namespaced element such as <arxiv:doi>.
func arxivExtension(item *gofeed.Item, name string) string {
	ns, ok := item.Extensions["arxiv"]
	if !ok {
		return ""
	}
	if vals := ns[name]; len(vals) > 0 {
		return strings.TrimSpace(vals[0].Value)
	}
	return ""
}
