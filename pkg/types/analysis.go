// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Analysis is the language-model assessment attached to a Paper. It is
// created once per Paper and never mutated afterward.
type Analysis struct {
	// Tags are short descriptive labels in the order the model returned them.
	Tags []string `json:"tags" yaml:"tags"`

	// Summary is a bounded-length narrative summary.
	Summary string `json:"summary" yaml:"summary"`

	// Score is the relevance to the query on the run's configured scale.
	Score float64 `json:"score" yaml:"score"`

	// Reasoning justifies the score.
	Reasoning string `json:"reasoning" yaml:"reasoning"`
}

// IsEmpty reports whether the analysis carries no content. The default
// analysis returned on failure is empty.
func (a Analysis) IsEmpty() bool {
	return len(a.Tags) == 0 && a.Summary == "" && a.Score == 0 && a.Reasoning == ""
}

// ChatRole identifies the author of a chat turn.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn sent to or received from a language model.
type ChatMessage struct {
	Role ChatRole `json:"role" yaml:"role"`
	Text string   `json:"text" yaml:"text"`
}
