// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"strconv"
	"text/template"

	"github.com/pdiddy/literature-helper/pkg/types"
)

// analysisPromptTmpl asks for one JSON object with tags, summary, score and
// reasoning for a single paper.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`You are a research assistant screening academic literature for relevance to a research topic.

Research topic: {{.Query}}

Paper title: {{.Paper.Title}}
Authors: {{.Paper.AuthorLine}}
{{- if .Paper.Venue}}
Venue: {{.Paper.Venue}}
{{- end}}
{{- if .Paper.Year}}
Year: {{.Paper.Year}}
{{- end}}
Abstract: {{.Paper.Abstract}}
{{- if .Paper.Excerpt}}

Excerpt from the full text:
{{.Paper.Excerpt}}
{{- end}}

Respond with a single JSON object with exactly these keys:
- "tags": an array of {{.NumTags}} short, lowercase, descriptive tags
- "summary": a summary of the paper in at most {{.SummaryWords}} words
- "score": a number from 0 to {{.ScoreMax}} rating how relevant the paper is to the research topic ({{.ScoreMax}} means highly relevant)
- "reasoning": one or two sentences justifying the score

Do not include any text outside the JSON object.

Example response:
{"tags": ["graph-neural-networks", "survey"], "summary": "Reviews message-passing architectures and their applications.", "score": {{.ScoreMax}}, "reasoning": "Directly surveys the research topic."}
`))

type promptData struct {
	Query        string
	Paper        types.Paper
	NumTags      int
	SummaryWords int
	ScoreMax     string
}

// RenderPrompt executes the analysis prompt template for one paper.
func RenderPrompt(query string, p types.Paper, cfg types.AnalysisConfig) (string, error) {
	var buf bytes.Buffer
	err := analysisPromptTmpl.Execute(&buf, promptData{
		Query:        query,
		Paper:        p,
		NumTags:      cfg.NumTags,
		SummaryWords: cfg.SummaryWords,
		ScoreMax:     strconv.FormatFloat(cfg.ScoreMax, 'f', -1, 64),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
