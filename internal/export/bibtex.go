// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders a Paper and its Analysis into citation and digest
// formats. Every function here is pure: no I/O, no errors for missing data.
package export

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/literature-helper/pkg/types"
)

// BibTeX renders one @article entry. Every field is always present; unknown
// values are rendered empty rather than omitted.
func BibTeX(p types.Paper, a types.Analysis) string {
	year := ""
	if p.Year > 0 {
		year = strconv.Itoa(p.Year)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", Key(p))
	writeField(&b, "title", escapeLatex(p.Title))
	writeField(&b, "author", escapeLatex(formatAuthors(p.Authors)))
	writeField(&b, "journal", escapeLatex(p.Venue))
	writeField(&b, "year", year)
	writeField(&b, "doi", escapeVerbatim(p.DOI))
	writeField(&b, "url", escapeVerbatim(p.URL))
	writeField(&b, "keywords", escapeLatex(strings.Join(a.Tags, ", ")))
	writeField(&b, "note", escapeLatex(a.Summary))
	b.WriteString("}\n")
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  %s = {%s},\n", name, value)
}

var keyUnsafe = regexp.MustCompile(`[^A-Za-z0-9._:-]+`)

// Key derives the citation key from the DOI suffix, else the last path
// segment of the URL. Falls back to "paper".
func Key(p types.Paper) string {
	var raw string
	if doi := types.NormalizeDOI(p.DOI); doi != "" {
		raw = doi[strings.LastIndex(doi, "/")+1:]
	} else if u, err := url.Parse(strings.TrimSpace(p.URL)); err == nil && p.URL != "" {
		path := strings.TrimRight(u.Path, "/")
		raw = path[strings.LastIndex(path, "/")+1:]
		if raw == "" {
			raw = u.Host
		}
	}
	key := strings.Trim(keyUnsafe.ReplaceAllString(raw, "_"), "_")
	if key == "" {
		return "paper"
	}
	return key
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First".
// An empty list yields the placeholder identity.
func formatAuthors(authors []string) string {
	var formatted []string
	for _, name := range authors {
		given, family := types.SplitName(name)
		if family == "" {
			continue
		}
		if given != "" {
			formatted = append(formatted, family+", "+given)
		} else {
			formatted = append(formatted, family)
		}
	}
	if len(formatted) == 0 {
		return types.PlaceholderLastName + ", " + types.PlaceholderFirstName
	}
	return strings.Join(formatted, " and ")
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

var latexUnescaper = strings.NewReplacer(
	`\textbackslash{}`, `\`,
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	`\{`, "{",
	`\}`, "}",
	`\textasciitilde{}`, "~",
	`\textasciicircum{}`, "^",
)

// verbatimEscaper covers the characters that break brace balance. URL and
// DOI fields keep everything else as typed.
var verbatimEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
)

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	return latexEscaper.Replace(s)
}

func escapeVerbatim(s string) string {
	return verbatimEscaper.Replace(s)
}

// ParseBibTeXField reads the brace-delimited value of field from a rendered
// entry and reverses the LaTeX escaping. Returns "" when the field is absent.
func ParseBibTeXField(entry, field string) string {
	re, err := regexp.Compile(`(?im)^\s*` + regexp.QuoteMeta(field) + `\s*=\s*\{`)
	if err != nil {
		return ""
	}
	loc := re.FindStringIndex(entry)
	if loc == nil {
		return ""
	}

	depth := 1
	start := loc[1]
	for i := start; i < len(entry); i++ {
		switch entry[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return latexUnescaper.Replace(entry[start:i])
			}
		}
	}
	return ""
}
