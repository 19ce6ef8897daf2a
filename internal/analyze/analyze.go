// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze asks a language model for tags, a summary, a relevance
// score and a justification for one paper, and parses the reply tolerantly.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/literature-helper/pkg/types"
)

var (
	// ErrMissingAPIKey is returned when a generator is built without a key.
	ErrMissingAPIKey = errors.New("language model API key is not configured")

	// ErrEmptyResponse is returned when the model answers without any text.
	ErrEmptyResponse = errors.New("language model returned no text")
)

// Generator sends a conversation to a language model and returns the text
// of its single reply. Implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, messages []types.ChatMessage) (string, error)
}

// NewGenerator builds the backend selected by cfg.Backend.
func NewGenerator(ctx context.Context, cfg types.LLMConfig, client *http.Client) (Generator, error) {
	switch cfg.Backend {
	case types.BackendREST, "":
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return &GeminiBackend{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Client:  client,
		}, nil
	case types.BackendGenAI:
		return NewGenAIBackend(ctx, cfg, client)
	default:
		return nil, fmt.Errorf("unknown llm backend %q (want %s or %s)", cfg.Backend, types.BackendREST, types.BackendGenAI)
	}
}

// Analyzer produces an Analysis for each paper of a run.
type Analyzer struct {
	gen Generator
	cfg types.AnalysisConfig
}

// New returns an Analyzer. Zero values in cfg fall back to defaults.
func New(gen Generator, cfg types.AnalysisConfig) *Analyzer {
	def := types.DefaultConfig().Analysis
	if cfg.NumTags <= 0 {
		cfg.NumTags = def.NumTags
	}
	if cfg.SummaryWords <= 0 {
		cfg.SummaryWords = def.SummaryWords
	}
	if cfg.ScoreMax <= 0 {
		cfg.ScoreMax = def.ScoreMax
	}
	return &Analyzer{gen: gen, cfg: cfg}
}

// ScoreMax returns the top of the score scale this analyzer asks for.
func (a *Analyzer) ScoreMax() float64 { return a.cfg.ScoreMax }

// Analyze requests an analysis of p against query. The paper's Excerpt is
// included in the prompt when set.
//
// A generation failure returns the empty default Analysis together with the
// error; callers treat it as non-fatal. Malformed model output is never an
// error: it degrades to whatever ParseAnalysis recovers.
func (a *Analyzer) Analyze(ctx context.Context, query string, p types.Paper) (types.Analysis, error) {
	prompt, err := RenderPrompt(query, p, a.cfg)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reply, err := a.gen.Generate(ctx, []types.ChatMessage{{Role: types.RoleUser, Text: prompt}})
	if err != nil {
		return types.Analysis{}, fmt.Errorf("generating analysis: %w", err)
	}

	analysis, _ := ParseAnalysis(reply)
	return analysis, nil
}
