// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strconv"
	"strings"

	"github.com/pdiddy/literature-helper/pkg/types"
)

// Digest renders a Markdown summary of one paper and its analysis. Missing
// values leave their line empty.
func Digest(p types.Paper, a types.Analysis) string {
	var b strings.Builder
	b.WriteString("### " + p.Title + "\n\n")
	b.WriteString("**Authors:** " + p.AuthorLine() + "\n\n")
	b.WriteString("**Abstract:** " + p.Abstract + "\n\n")
	b.WriteString("**Summary:** " + a.Summary + "\n\n")
	b.WriteString("**Relevance:** " + strconv.FormatFloat(a.Score, 'f', -1, 64) + "\n\n")
	b.WriteString("**Tags:** " + strings.Join(a.Tags, ", ") + "\n\n")
	b.WriteString("**Reasoning:** " + a.Reasoning + "\n\n")
	b.WriteString("[View Article](" + p.URL + ")\n")
	return b.String()
}
