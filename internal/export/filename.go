// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strings"
	"unicode"
)

// maxFilenameRunes bounds the title-derived part of a download name.
const maxFilenameRunes = 80

// Filename derives a filesystem-safe download name from a paper title,
// e.g. Filename("GNN: A Survey", "bib") == "GNN-A-Survey.bib".
func Filename(title, ext string) string {
	var b strings.Builder
	dash := false
	n := 0
	for _, r := range title {
		if n >= maxFilenameRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			dash = false
			n++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			n++
		}
	}
	name := strings.TrimRight(b.String(), "-")
	if name == "" {
		name = "paper"
	}
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}
