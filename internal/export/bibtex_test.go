// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strings"
	"testing"

	"github.com/pdiddy/literature-helper/pkg/types"
)

func samplePaper() types.Paper {
	return types.Paper{
		Title:    "Graph Neural Networks: A Review of Methods & Applications",
		URL:      "https://doi.org/10.1016/j.aiopen.2021.01.001",
		Authors:  []string{"Jie Zhou", "Ganqu Cui", "Maosong Sun"},
		Abstract: "Lots of learning tasks require dealing with graph data.",
		DOI:      "10.1016/j.aiopen.2021.01.001",
		Venue:    "AI Open",
		Year:     2020,
	}
}

func sampleAnalysis() types.Analysis {
	return types.Analysis{
		Tags:      []string{"gnn", "survey"},
		Summary:   "A survey of GNN variants.",
		Score:     4.2,
		Reasoning: "On-topic.",
	}
}

func TestBibTeXFields(t *testing.T) {
	got := BibTeX(samplePaper(), sampleAnalysis())

	wantLines := []string{
		"@article{j.aiopen.2021.01.001,",
		`  title = {Graph Neural Networks: A Review of Methods \& Applications},`,
		"  author = {Zhou, Jie and Cui, Ganqu and Sun, Maosong},",
		"  journal = {AI Open},",
		"  year = {2020},",
		"  doi = {10.1016/j.aiopen.2021.01.001},",
		"  url = {https://doi.org/10.1016/j.aiopen.2021.01.001},",
		"  keywords = {gnn, survey},",
		"  note = {A survey of GNN variants.},",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line+"\n") {
			t.Errorf("BibTeX() missing line %q, got:\n%s", line, got)
		}
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Errorf("BibTeX() should close the entry, got:\n%s", got)
	}
}

func TestBibTeXMissingFieldsRenderEmpty(t *testing.T) {
	got := BibTeX(types.Paper{Title: "GNN Survey", URL: "https://x/1"}, types.Analysis{})

	for _, field := range []string{"journal", "year", "doi", "keywords", "note"} {
		if !strings.Contains(got, "  "+field+" = {},\n") {
			t.Errorf("field %s should be present and empty, got:\n%s", field, got)
		}
	}
	if !strings.Contains(got, "  author = {Helper, AI},\n") {
		t.Errorf("author should default to the placeholder, got:\n%s", got)
	}
	if !strings.HasPrefix(got, "@article{1,") {
		t.Errorf("key should come from the URL path, got:\n%s", got)
	}
}

func TestBibTeXEmptyPaper(t *testing.T) {
	got := BibTeX(types.Paper{}, types.Analysis{})
	if !strings.HasPrefix(got, "@article{paper,") {
		t.Errorf("empty paper should use fallback key, got:\n%s", got)
	}
	if ParseBibTeXField(got, "title") != "" {
		t.Errorf("title should be empty")
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		paper types.Paper
		want  string
	}{
		{"doi suffix", types.Paper{DOI: "10.1038/nature14539"}, "nature14539"},
		{"doi url", types.Paper{DOI: "https://doi.org/10.5555/3295222.3295349"}, "3295222.3295349"},
		{"url path", types.Paper{URL: "https://arxiv.org/abs/1706.03762"}, "1706.03762"},
		{"url trailing slash", types.Paper{URL: "https://example.org/papers/gnn-survey/"}, "gnn-survey"},
		{"host only", types.Paper{URL: "https://example.org"}, "example.org"},
		{"unsafe chars", types.Paper{URL: "https://example.org/view?id=1"}, "view"},
		{"nothing", types.Paper{}, "paper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.paper); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"none", nil, "Helper, AI"},
		{"single token", []string{"Plato"}, "Plato"},
		{"middle names", []string{"Ada King Lovelace"}, "Lovelace, Ada King"},
		{"blank entries skipped", []string{" ", "Alan Turing"}, "Turing, Alan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Rendering a paper and reading title and URL back recovers them exactly.
func TestBibTeXRoundTrip(t *testing.T) {
	tests := []struct {
		title string
		url   string
	}{
		{"GNN Survey", "https://x/1"},
		{"Methods & Tools: 100% {Nested} $Cost$ #1 under_score", "https://example.org/a_b?x=1&y=2"},
		{`Tilde ~ caret ^ and back\slash`, "https://example.org/~user/paper.pdf"},
		{"Ünïcödé — titles", "https://example.org/%E2%9C%93"},
		{"Braces in link", "https://x/a}b"},
		{"Balanced braces in link", "https://x/{id}/c\\d"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			entry := BibTeX(types.Paper{Title: tt.title, URL: tt.url}, sampleAnalysis())
			if got := ParseBibTeXField(entry, "title"); got != tt.title {
				t.Errorf("title round trip = %q, want %q\n%s", got, tt.title, entry)
			}
			if got := ParseBibTeXField(entry, "url"); got != tt.url {
				t.Errorf("url round trip = %q, want %q\n%s", got, tt.url, entry)
			}
		})
	}
}

func TestBibTeXDOIRoundTrip(t *testing.T) {
	doi := "10.1002/(SICI)1097-4571{x}"
	entry := BibTeX(types.Paper{Title: "T", DOI: doi}, sampleAnalysis())
	if got := ParseBibTeXField(entry, "doi"); got != doi {
		t.Errorf("doi round trip = %q, want %q\n%s", got, doi, entry)
	}
	if got := ParseBibTeXField(entry, "url"); got != "" {
		t.Errorf("url = %q, want empty", got)
	}
}

func TestParseBibTeXFieldMissing(t *testing.T) {
	if got := ParseBibTeXField("@article{k,\n  title = {T},\n}\n", "abstract"); got != "" {
		t.Errorf("missing field = %q, want empty", got)
	}
	if got := ParseBibTeXField("@article{k,\n  title = {unterminated", "title"); got != "" {
		t.Errorf("unterminated field = %q, want empty", got)
	}
}
