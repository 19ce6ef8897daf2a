// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// OpenAlexSource queries the OpenAlex works API.
type OpenAlexSource struct {
	Client  *http.Client
	BaseURL string
	// Email is sent as mailto parameter for polite pool access.
	Email     string
	UserAgent string
}

// Name returns the source identifier.
func (s *OpenAlexSource) Name() string { return "openalex" }

// Search queries the OpenAlex API and returns up to limit papers.
func (s *OpenAlexSource) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(limit)},
		"page":     {"1"},
	}
	if s.Email != "" {
		params.Set("mailto", s.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.Do(s.Client, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	papers := make([]types.Paper, 0, len(oar.Results))
	for _, work := range oar.Results {
		p := types.Paper{
			Title:    work.Title,
			URL:      work.ID,
			Abstract: reconstructAbstract(work.AbstractInvertedIndex),
			Year:     work.PublicationYear,
			Venue:    work.PrimaryLocation.Source.DisplayName,
			Source:   "openalex",
		}
		for _, authorship := range work.Authorships {
			if authorship.Author.DisplayName != "" {
				p.Authors = append(p.Authors, authorship.Author.DisplayName)
			}
		}
		p.AuthorsInfo = strings.Join(p.Authors, ", ")

		// OpenAlex reports DOIs as https://doi.org/ URLs.
		if work.DOI != "" {
			p.DOI = types.NormalizeDOI(work.DOI)
			p.URL = work.DOI
		}
		if work.PrimaryLocation.PDFURL != "" {
			p.PDFURL = work.PrimaryLocation.PDFURL
		} else if strings.HasSuffix(strings.ToLower(work.OpenAccess.OAURL), ".pdf") {
			p.PDFURL = work.OpenAccess.OAURL
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

type openAlexLocation struct {
	PDFURL string              `json:"pdf_url"`
	Source openAlexVenueSource `json:"source"`
}

type openAlexVenueSource struct {
	DisplayName string `json:"display_name"`
}
