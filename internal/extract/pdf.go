// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// arxivPDFBase is the arXiv PDF endpoint.
var arxivPDFBase = "https://arxiv.org/pdf/"

// arxivAbsPattern matches arXiv abstract page URLs and captures the ID.
var arxivAbsPattern = regexp.MustCompile(`^https?://(?:www\.|export\.)?arxiv\.org/abs/((?:\d{4}\.\d{4,5}|[a-z\-]+(?:\.[A-Z]{2})?/\d{7})(?:v\d+)?)$`)

func arxivID(rawURL string) string {
	if m := arxivAbsPattern.FindStringSubmatch(strings.TrimSpace(rawURL)); m != nil {
		return m[1]
	}
	return ""
}

// pdfText concatenates page text until maxChars characters are collected.
// The parser panics on some malformed files; that is reported as an error.
func pdfText(data []byte, maxChars int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
		if maxChars > 0 && utf8.RuneCountInString(b.String()) >= maxChars {
			break
		}
	}
	return b.String(), nil
}
