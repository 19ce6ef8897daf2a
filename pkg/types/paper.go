// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the literature-helper pipeline.
// A Paper is fetched by a source, an Analysis is attached to it by the
// analyzer, and a ReferenceItem is the shape pushed into the reference manager.
package types

import (
	"strings"
	"unicode"
)

// Paper is a candidate publication returned by a source adapter. It is
// created once per query and consumed by the rest of the run; nothing
// persists it locally.
type Paper struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// URL links to the paper's landing page.
	URL string `json:"url" yaml:"url"`

	// AuthorsInfo is the free-text author line (e.g. "A Smith, B Jones - Nature, 2020").
	AuthorsInfo string `json:"authors_info,omitempty" yaml:"authors_info,omitempty"`

	// Authors lists author names in source order when the source provides them.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the abstract or result snippet. May be empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PDFURL points to a downloadable document, if the source exposed one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// DOI is the external identifier, if known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Venue is the journal or conference name, if known.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Source names the adapter that produced the record (e.g. "scholar").
	Source string `json:"source" yaml:"source"`

	// Excerpt holds text extracted from the linked document, if any.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

// AuthorLine returns the structured author list joined by commas, falling
// back to the free-text author line.
func (p Paper) AuthorLine() string {
	if len(p.Authors) > 0 {
		return strings.Join(p.Authors, ", ")
	}
	return p.AuthorsInfo
}

// NormalizeTitle returns a lowercased, punctuation-stripped version of the
// title with collapsed whitespace.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes so that
// "https://doi.org/10.1/X" and "doi:10.1/x" compare equal.
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.TrimSpace(doi)
}

// SplitName splits a full name into given and family parts on the last
// space. Single-token names are returned as the family name.
func SplitName(name string) (given, family string) {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return "", name
	}
	return strings.TrimSpace(name[:idx]), name[idx+1:]
}
