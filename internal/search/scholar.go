// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// ScholarSource scrapes a search-engine result page through a proxying
// fetch endpoint. The proxy receives the target URL and the api_key as
// query parameters and returns the page HTML.
type ScholarSource struct {
	Client     *http.Client
	ProxyURL   string
	APIKey     string
	ScholarURL string
	UserAgent  string
}

// Name returns the source identifier.
func (s *ScholarSource) Name() string { return "scholar" }

// resultSelectors are tried in order; the first that matches any block wins.
var resultSelectors = []string{
	"div.gs_r.gs_or.gs_scl",
	"div.gs_ri",
}

// resultsContainer is present on a well-formed page even when it holds no results.
const resultsContainer = "#gs_res_ccl_mid, #gs_res_ccl"

// Search fetches the result page for query and parses up to limit papers.
func (s *ScholarSource) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("scrape proxy key is not configured")
	}

	target := s.ScholarURL + "?" + url.Values{
		"q":   {query},
		"num": {strconv.Itoa(limit)},
	}.Encode()
	params := url.Values{
		"api_key": {s.APIKey},
		"url":     {target},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ProxyURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.Do(s.Client, req)
	if err != nil {
		return nil, fmt.Errorf("scrape proxy request: %w", err)
	}
	defer resp.Body.Close()

	return parseScholarResults(resp.Body, limit)
}

// parseScholarResults extracts papers from a result page.
func parseScholarResults(r io.Reader, limit int) ([]types.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var blocks *goquery.Selection
	for _, sel := range resultSelectors {
		if b := doc.Find(sel); b.Length() > 0 {
			blocks = b
			break
		}
	}
	if blocks == nil {
		if doc.Find(resultsContainer).Length() > 0 {
			return nil, nil
		}
		return nil, ErrUnexpectedMarkup
	}

	var papers []types.Paper
	blocks.EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if limit > 0 && len(papers) >= limit {
			return false
		}
		if p := parseScholarBlock(b); p.Title != "" {
			papers = append(papers, p)
		}
		return true
	})
	return papers, nil
}

// titleMarkers matches leading type markers such as "[PDF]" or "[CITATION][C]".
var titleMarkers = regexp.MustCompile(`^(\[[A-Z]+\]\s*)+`)

// parseScholarBlock extracts one result block.
func parseScholarBlock(b *goquery.Selection) types.Paper {
	heading := b.Find("h3.gs_rt").First()
	link := heading.Find("a").First()

	title := cleanText(link.Text())
	if title == "" {
		title = cleanText(heading.Text())
	}
	title = strings.TrimSpace(titleMarkers.ReplaceAllString(title, ""))

	href, _ := link.Attr("href")
	pdf, _ := b.Find("div.gs_or_ggsm a").First().Attr("href")
	authorLine := cleanText(b.Find("div.gs_a").First().Text())

	authors, venue, year := parseAuthorLine(authorLine)
	return types.Paper{
		Title:       title,
		URL:         href,
		AuthorsInfo: authorLine,
		Authors:     authors,
		Abstract:    cleanText(b.Find("div.gs_rs").First().Text()),
		PDFURL:      pdf,
		DOI:         findDOI(href),
		Venue:       venue,
		Year:        year,
		Source:      "scholar",
	}
}

var yearPattern = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)

// parseAuthorLine splits "A Smith, B Jones - Nature, 2020 - nature.com"
// into authors, venue and year. Missing parts come back empty.
func parseAuthorLine(line string) (authors []string, venue string, year int) {
	if line == "" {
		return nil, "", 0
	}
	parts := strings.Split(line, " - ")

	for _, a := range strings.Split(parts[0], ",") {
		a = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(a), "…."))
		if a != "" {
			authors = append(authors, a)
		}
	}

	if len(parts) < 2 {
		return authors, "", 0
	}
	pub := strings.TrimSpace(parts[1])
	if m := yearPattern.FindAllString(pub, -1); len(m) > 0 {
		year, _ = strconv.Atoi(m[len(m)-1])
		pub = strings.Replace(pub, m[len(m)-1], "", 1)
	}
	venue = strings.Trim(strings.TrimSpace(pub), ",… ")
	return authors, venue, year
}
