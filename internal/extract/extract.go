// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls a bounded text excerpt out of a paper's linked
// document. Extraction is best-effort: callers get an empty excerpt on any
// failure and continue without it.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/pkg/types"
)

var (
	// ErrTooLarge is returned when the document exceeds MaxBytes.
	ErrTooLarge = errors.New("document exceeds size limit")

	// ErrUnsupported is returned for payloads that are neither PDF, HTML nor plain text.
	ErrUnsupported = errors.New("unsupported document type")

	// ErrNoText is returned when a document decodes but carries no text.
	ErrNoText = errors.New("document contains no extractable text")
)

// Extractor downloads documents and extracts their text.
type Extractor struct {
	Client    *http.Client
	MaxChars  int
	MaxBytes  int64
	UserAgent string
}

// New returns an Extractor. Zero limits fall back to defaults.
func New(cfg types.ExtractConfig, httpCfg types.HTTPConfig, client *http.Client) *Extractor {
	def := types.DefaultConfig().Extract
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = def.MaxChars
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	return &Extractor{
		Client:    client,
		MaxChars:  cfg.MaxChars,
		MaxBytes:  cfg.MaxBytes,
		UserAgent: httpCfg.UserAgent,
	}
}

// Excerpt returns up to MaxChars characters of text from the document at
// rawURL, or "" on any failure.
func (e *Extractor) Excerpt(ctx context.Context, rawURL string) string {
	text, err := e.Extract(ctx, rawURL)
	if err != nil {
		return ""
	}
	return text
}

// Extract is Excerpt with the failure reason exposed.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("empty document URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf, text/html;q=0.9, */*;q=0.5")

	resp, err := httputil.Do(e.Client, req)
	if err != nil {
		return "", fmt.Errorf("fetching document: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	if int64(len(data)) > e.MaxBytes {
		return "", ErrTooLarge
	}

	pageURL := resp.Request.URL
	if pageURL == nil {
		pageURL, _ = url.Parse(rawURL)
	}

	var text string
	switch kind := detectKind(resp.Header.Get("Content-Type"), data); kind {
	case kindPDF:
		text, err = pdfText(data, e.MaxChars)
	case kindHTML:
		text, err = htmlText(data, pageURL)
	case kindText:
		text = string(data)
	default:
		return "", ErrUnsupported
	}
	if err != nil {
		return "", err
	}

	text = truncate(strings.TrimSpace(text), e.MaxChars)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

type docKind int

const (
	kindUnknown docKind = iota
	kindPDF
	kindHTML
	kindText
)

// detectKind trusts the %PDF magic first, then the declared content type,
// then content sniffing.
func detectKind(contentType string, data []byte) docKind {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return kindPDF
	}
	ct := strings.ToLower(contentType)
	if ct == "" {
		ct = strings.ToLower(http.DetectContentType(data))
	}
	switch {
	case strings.Contains(ct, "pdf"):
		return kindPDF
	case strings.Contains(ct, "html"):
		return kindHTML
	case strings.HasPrefix(ct, "text/plain"):
		return kindText
	}
	return kindUnknown
}

// htmlText runs readability over an HTML page and returns its article text.
func htmlText(data []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	return article.TextContent, nil
}

// truncate cuts s to at most maxChars runes.
func truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

// DocumentURL picks the link to extract from: the explicit PDF link, else
// the PDF endpoint for an arXiv abstract page. Returns "" when neither exists.
func DocumentURL(p types.Paper) string {
	if p.PDFURL != "" {
		return p.PDFURL
	}
	if id := arxivID(p.URL); id != "" {
		return arxivPDFBase + id
	}
	return ""
}
