// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// RunSummary counts saved and skipped papers for one orchestration pass.
type RunSummary struct {
	Saved   int `json:"saved" yaml:"saved"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// String renders the summary the way the CLI prints it.
func (s RunSummary) String() string {
	return fmt.Sprintf("Saved %d | Skipped %d", s.Saved, s.Skipped)
}

// NoticeLevel grades a Notice.
type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice is a recovered, non-fatal condition surfaced to the caller.
// Presentation is left to the calling layer.
type Notice struct {
	Level     NoticeLevel `json:"level" yaml:"level"`
	Component string      `json:"component" yaml:"component"`
	Message   string      `json:"message" yaml:"message"`
}

// PaperResult is everything one run produced for a single Paper.
type PaperResult struct {
	Paper    Paper        `json:"paper" yaml:"paper"`
	Analysis Analysis     `json:"analysis" yaml:"analysis"`
	BibTeX   string       `json:"bibtex" yaml:"bibtex"`
	Digest   string       `json:"digest" yaml:"digest"`
	Save     *SaveOutcome `json:"save,omitempty" yaml:"save,omitempty"`
	Notices  []Notice     `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// Report is the outcome of one pipeline run.
type Report struct {
	Query    string        `json:"query" yaml:"query"`
	Source   string        `json:"source" yaml:"source"`
	ScoreMax float64       `json:"score_max" yaml:"score_max"`
	Papers   []PaperResult `json:"papers" yaml:"papers"`
	Summary  RunSummary    `json:"summary" yaml:"summary"`
	Notices  []Notice      `json:"notices,omitempty" yaml:"notices,omitempty"`
}
