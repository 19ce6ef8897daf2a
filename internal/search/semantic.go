// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/pkg/types"
)

const semanticFields = "title,url,abstract,authors,year,venue,externalIds,openAccessPdf"

// SemanticScholarSource queries the Semantic Scholar paper search API.
type SemanticScholarSource struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	UserAgent string
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

// Search queries the API and maps each record into a Paper. Missing
// optional fields default to empty strings.
func (s *SemanticScholarSource) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.Do(s.Client, req)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, sp := range sr.Data {
		p := types.Paper{
			Title:    sp.Title,
			URL:      sp.URL,
			Abstract: sp.Abstract,
			Venue:    sp.Venue,
			Year:     sp.Year,
			DOI:      sp.ExternalIDs.DOI,
			Source:   "semantic_scholar",
		}
		if p.URL == "" && sp.PaperID != "" {
			p.URL = "https://www.semanticscholar.org/paper/" + sp.PaperID
		}
		for _, a := range sp.Authors {
			if a.Name != "" {
				p.Authors = append(p.Authors, a.Name)
			}
		}
		p.AuthorsInfo = strings.Join(p.Authors, ", ")
		if sp.OpenAccessPDF != nil {
			p.PDFURL = sp.OpenAccessPDF.URL
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	URL           string              `json:"url"`
	Abstract      string              `json:"abstract"`
	Venue         string              `json:"venue"`
	Year          int                 `json:"year"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
	OpenAccessPDF *semanticPDF        `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticPDF struct {
	URL string `json:"url"`
}
