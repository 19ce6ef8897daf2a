// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one literature run: fetch papers from a source,
// analyze each one, render its exports, and save the ones that clear the
// relevance threshold.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-helper/internal/export"
	"github.com/pdiddy/literature-helper/internal/extract"
	"github.com/pdiddy/literature-helper/internal/logging"
	"github.com/pdiddy/literature-helper/internal/search"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// ErrInvalidRequest is returned for request values that halt a run.
var ErrInvalidRequest = errors.New("invalid request")

// Component names used on notices.
const (
	ComponentSearch  = "search"
	ComponentAnalyze = "analyze"
	ComponentZotero  = "zotero"
)

// Analyzer scores one paper against the query.
type Analyzer interface {
	Analyze(ctx context.Context, query string, p types.Paper) (types.Analysis, error)
	ScoreMax() float64
}

// Excerpter returns best-effort document text, "" on failure.
type Excerpter interface {
	Excerpt(ctx context.Context, url string) string
}

// Sink persists a paper to the reference manager.
type Sink interface {
	Save(ctx context.Context, p types.Paper, a types.Analysis, allowDuplicates bool) types.SaveOutcome
}

// Observer is called after each paper completes, with its 1-based index.
type Observer func(index, total int, result types.PaperResult)

// Request holds the user-supplied parameters of one run.
type Request struct {
	Query           string  `json:"query"`
	Source          string  `json:"source"`
	Count           int     `json:"count"`
	Threshold       float64 `json:"threshold"`
	Save            bool    `json:"save"`
	AllowDuplicates bool    `json:"allow_duplicates"`

	// Observer, when set, receives each result as soon as it is ready.
	Observer Observer `json:"-"`
}

// Pipeline wires the components of a run. Extractor and Sink may be nil:
// a nil Extractor disables excerpts and a nil Sink rejects save requests.
type Pipeline struct {
	Sources   *search.Registry
	Analyzer  Analyzer
	Extractor Excerpter
	Sink      Sink
	MaxCount  int
	Log       *zap.Logger
}

// DefaultThreshold is the save threshold used when a caller gives none:
// half the analyzer's score scale.
func (p *Pipeline) DefaultThreshold() float64 {
	return p.Analyzer.ScoreMax() / 2
}

// Validate checks req against the configured limits.
func (p *Pipeline) Validate(req Request) error {
	maxCount := p.MaxCount
	if maxCount <= 0 {
		maxCount = types.DefaultConfig().Pipeline.MaxCount
	}
	scoreMax := p.Analyzer.ScoreMax()

	switch {
	case strings.TrimSpace(req.Query) == "":
		return fmt.Errorf("%w: query is empty", ErrInvalidRequest)
	case req.Count < 1 || req.Count > maxCount:
		return fmt.Errorf("%w: count %d outside 1..%d", ErrInvalidRequest, req.Count, maxCount)
	case math.IsNaN(req.Threshold) || req.Threshold < 0 || req.Threshold > scoreMax:
		return fmt.Errorf("%w: threshold %v outside 0..%v", ErrInvalidRequest, req.Threshold, scoreMax)
	case req.Save && p.Sink == nil:
		return fmt.Errorf("%w: saving requested but no reference manager is configured", ErrInvalidRequest)
	}
	if _, err := p.Sources.Lookup(req.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Run executes one pass. Only an invalid request or a cancelled context
// returns an error; every other failure is recorded as a Notice and the
// run continues with the next paper.
func (p *Pipeline) Run(ctx context.Context, req Request) (*types.Report, error) {
	if err := p.Validate(req); err != nil {
		return nil, err
	}
	log := logging.OrNop(p.Log).With(zap.String("query", req.Query), zap.String("source", req.Source))
	src, _ := p.Sources.Lookup(req.Source)

	report := &types.Report{
		Query:    strings.TrimSpace(req.Query),
		Source:   src.Name(),
		ScoreMax: p.Analyzer.ScoreMax(),
		Papers:   []types.PaperResult{},
	}

	papers, err := search.Fetch(ctx, src, report.Query, req.Count)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		report.Notices = append(report.Notices, types.Notice{
			Level:     types.LevelWarning,
			Component: ComponentSearch,
			Message:   fmt.Sprintf("fetching papers: %v", err),
		})
		return report, nil
	}
	if len(papers) == 0 {
		report.Notices = append(report.Notices, types.Notice{
			Level:     types.LevelInfo,
			Component: ComponentSearch,
			Message:   "no papers found",
		})
		return report, nil
	}
	log.Info("fetched papers", zap.Int("count", len(papers)))

	for i, paper := range papers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := p.processPaper(ctx, log, req, paper)
		report.Papers = append(report.Papers, result)

		if result.Save != nil {
			if result.Save.Saved() {
				report.Summary.Saved++
			} else {
				report.Summary.Skipped++
			}
		}
		if req.Observer != nil {
			req.Observer(i+1, len(papers), result)
		}
	}

	log.Info("run complete", zap.Int("saved", report.Summary.Saved), zap.Int("skipped", report.Summary.Skipped))
	return report, nil
}

// processPaper runs excerpt, analysis, export and the save gate for one paper.
func (p *Pipeline) processPaper(ctx context.Context, log *zap.Logger, req Request, paper types.Paper) types.PaperResult {
	log = log.With(zap.String("title", paper.Title))

	if p.Extractor != nil {
		if docURL := extract.DocumentURL(paper); docURL != "" {
			paper.Excerpt = p.Extractor.Excerpt(ctx, docURL)
			if paper.Excerpt == "" {
				log.Debug("no excerpt extracted", zap.String("url", docURL))
			}
		}
	}

	result := types.PaperResult{Paper: paper}

	analysis, err := p.Analyzer.Analyze(ctx, req.Query, paper)
	if err != nil {
		log.Warn("analysis failed", zap.Error(err))
		result.Notices = append(result.Notices, types.Notice{
			Level:     types.LevelWarning,
			Component: ComponentAnalyze,
			Message:   fmt.Sprintf("analysis failed, using empty result: %v", err),
		})
	} else if analysis.IsEmpty() {
		log.Warn("model reply held no usable analysis")
		result.Notices = append(result.Notices, types.Notice{
			Level:     types.LevelWarning,
			Component: ComponentAnalyze,
			Message:   "model reply held no usable analysis, using empty result",
		})
	}
	result.Analysis = analysis
	result.BibTeX = export.BibTeX(paper, analysis)
	result.Digest = export.Digest(paper, analysis)

	// A NaN score never passes.
	if !req.Save || !(analysis.Score >= req.Threshold) {
		return result
	}

	outcome := p.Sink.Save(ctx, paper, analysis, req.AllowDuplicates)
	result.Save = &outcome
	switch outcome.Status {
	case types.SaveDuplicate:
		result.Notices = append(result.Notices, types.Notice{
			Level:     types.LevelInfo,
			Component: ComponentZotero,
			Message:   "skipped duplicate: " + outcome.Message,
		})
	case types.SaveFailed:
		result.Notices = append(result.Notices, types.Notice{
			Level:     types.LevelError,
			Component: ComponentZotero,
			Message:   "save failed: " + outcome.Message,
		})
	}
	return result
}
