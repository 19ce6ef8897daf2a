package export

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/literature-helper/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty"`
	Note           string    `yaml:"note,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL renders one paper as a single-item CSL-YAML list.
func CSL(p types.Paper, a types.Analysis) ([]byte, error) {
	return yaml.Marshal([]CSLItem{toCSLItem(p, a)})
}

// WriteCSL writes every paper of a run as one CSL-YAML list to w.
func WriteCSL(w io.Writer, results []types.PaperResult) error {
	items := make([]CSLItem, len(results))
	for i, r := range results {
		items[i] = toCSLItem(r.Paper, r.Analysis)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a Paper and its Analysis to a CSLItem.
func toCSLItem(p types.Paper, a types.Analysis) CSLItem {
	item := CSLItem{
		ID:             Key(p),
		Type:           "article-journal",
		Title:          p.Title,
		ContainerTitle: p.Venue,
		Abstract:       p.Abstract,
		DOI:            types.NormalizeDOI(p.DOI),
		URL:            p.URL,
		Keyword:        strings.Join(a.Tags, ", "),
		Note:           a.Summary,
	}

	for _, name := range p.Authors {
		if n := parseAuthorName(name); n != (CSLName{}) {
			item.Author = append(item.Author, n)
		}
	}

	if p.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{p.Year}}}
	}
	return item
}

// parseAuthorName splits a full name string into CSL family/given parts.
// Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	given, family := types.SplitName(name)
	switch {
	case family == "":
		return CSLName{}
	case given == "":
		return CSLName{Literal: family}
	}
	return CSLName{Given: given, Family: family}
}
