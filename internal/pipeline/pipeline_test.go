// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/literature-helper/internal/analyze"
	"github.com/pdiddy/literature-helper/internal/search"
	"github.com/pdiddy/literature-helper/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- fakes ---

type mockSource struct {
	papers []types.Paper
	err    error
	calls  int
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Search(_ context.Context, _ string, _ int) ([]types.Paper, error) {
	m.calls++
	return m.papers, m.err
}

type fakeGenerator struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeGenerator) Generate(_ context.Context, _ []types.ChatMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}

type fakeSink struct {
	outcome types.SaveOutcome
	calls   []string
}

func (f *fakeSink) Save(_ context.Context, p types.Paper, _ types.Analysis, _ bool) types.SaveOutcome {
	f.calls = append(f.calls, p.Title)
	return f.outcome
}

type fakeExcerpter struct {
	text string
	urls []string
}

func (f *fakeExcerpter) Excerpt(_ context.Context, url string) string {
	f.urls = append(f.urls, url)
	return f.text
}

// fixedAnalyzer returns the same analysis for every paper.
type fixedAnalyzer struct{ analysis types.Analysis }

func (f fixedAnalyzer) Analyze(_ context.Context, _ string, _ types.Paper) (types.Analysis, error) {
	return f.analysis, nil
}

func (f fixedAnalyzer) ScoreMax() float64 { return 5 }

const gnnReply = `{"tags":["gnn","survey"],"summary":"A survey.","score":4.2,"reasoning":"On-topic."}`

func gnnSource() *mockSource {
	return &mockSource{papers: []types.Paper{{Title: "GNN Survey", URL: "https://x/1", Abstract: "..."}}}
}

func newPipeline(src search.Source, gen analyze.Generator, sink Sink) *Pipeline {
	p := &Pipeline{
		Sources:  search.NewRegistry(src),
		Analyzer: analyze.New(gen, types.AnalysisConfig{}),
		MaxCount: 50,
	}
	if sink != nil {
		p.Sink = sink
	}
	return p
}

// --- end to end ---

func TestRunThresholdMet(t *testing.T) {
	sink := &fakeSink{outcome: types.SaveOutcome{Status: types.SaveCreated, Key: "K1"}}
	p := newPipeline(gnnSource(), &fakeGenerator{replies: []string{gnnReply}}, sink)

	report, err := p.Run(context.Background(), Request{
		Query: "graph neural networks", Source: "mock", Count: 5, Threshold: 3.0, Save: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"GNN Survey"}, sink.calls)
	assert.Equal(t, types.RunSummary{Saved: 1, Skipped: 0}, report.Summary)
	require.Len(t, report.Papers, 1)
	got := report.Papers[0]
	assert.Equal(t, 4.2, got.Analysis.Score)
	assert.Equal(t, []string{"gnn", "survey"}, got.Analysis.Tags)
	assert.True(t, strings.HasPrefix(got.BibTeX, "@article{"))
	assert.Contains(t, got.Digest, "### GNN Survey")
	require.NotNil(t, got.Save)
	assert.Equal(t, "K1", got.Save.Key)
	assert.Empty(t, got.Notices)
}

func TestRunThresholdNotMet(t *testing.T) {
	sink := &fakeSink{outcome: types.SaveOutcome{Status: types.SaveCreated}}
	p := newPipeline(gnnSource(), &fakeGenerator{replies: []string{gnnReply}}, sink)

	report, err := p.Run(context.Background(), Request{
		Query: "graph neural networks", Source: "mock", Count: 5, Threshold: 4.5, Save: true,
	})
	require.NoError(t, err)

	assert.Empty(t, sink.calls, "sink must not be invoked below the threshold")
	assert.Equal(t, types.RunSummary{}, report.Summary)
	require.Len(t, report.Papers, 1)
	assert.Nil(t, report.Papers[0].Save)
	assert.NotEmpty(t, report.Papers[0].BibTeX, "exports render regardless of the gate")
}

func TestRunNonNumericScoreNotSaved(t *testing.T) {
	sink := &fakeSink{outcome: types.SaveOutcome{Status: types.SaveCreated}}
	reply := `{"tags":["x"],"summary":"s","score":"NaN","reasoning":"r"}`
	p := newPipeline(gnnSource(), &fakeGenerator{replies: []string{reply}}, sink)

	report, err := p.Run(context.Background(), Request{
		Query: "graph neural networks", Source: "mock", Count: 5, Threshold: 4.5, Save: true,
	})
	require.NoError(t, err)

	assert.Empty(t, sink.calls)
	assert.Equal(t, types.RunSummary{}, report.Summary)
	require.Len(t, report.Papers, 1)
	assert.Equal(t, 0.0, report.Papers[0].Analysis.Score)
	_, err = json.Marshal(report)
	assert.NoError(t, err, "report must stay JSON-encodable")
}

func TestRunGateRejectsNaN(t *testing.T) {
	sink := &fakeSink{outcome: types.SaveOutcome{Status: types.SaveCreated}}
	p := newPipeline(gnnSource(), nil, sink)
	p.Analyzer = fixedAnalyzer{analysis: types.Analysis{Score: math.NaN()}}

	report, err := p.Run(context.Background(), Request{
		Query: "graph neural networks", Source: "mock", Count: 5, Threshold: 0, Save: true,
	})
	require.NoError(t, err)
	assert.Empty(t, sink.calls)
	assert.Equal(t, types.RunSummary{}, report.Summary)
}

func TestRunSaveDisabled(t *testing.T) {
	sink := &fakeSink{outcome: types.SaveOutcome{Status: types.SaveCreated}}
	p := newPipeline(gnnSource(), &fakeGenerator{replies: []string{gnnReply}}, sink)

	report, err := p.Run(context.Background(), Request{Query: "q", Source: "mock", Count: 1})
	require.NoError(t, err)
	assert.Empty(t, sink.calls)
	assert.Equal(t, types.RunSummary{}, report.Summary)
}

func TestRunOneAnalysisPerPaper(t *testing.T) {
	src := &mockSource{papers: []types.Paper{
		{Title: "A", URL: "https://x/a"},
		{Title: "B", URL: "https://x/b"},
		{Title: "C", URL: "https://x/c"},
	}}
	gen := &fakeGenerator{replies: []string{gnnReply}}
	p := newPipeline(src, gen, nil)

	var seen []int
	report, err := p.Run(context.Background(), Request{
		Query: "q", Source: "mock", Count: 3,
		Observer: func(i, total int, r types.PaperResult) {
			assert.Equal(t, 3, total)
			seen = append(seen, i)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, []int{1, 2, 3}, seen)
	require.Len(t, report.Papers, 3)
	for i, title := range []string{"A", "B", "C"} {
		assert.Equal(t, title, report.Papers[i].Paper.Title, "order is preserved")
		assert.Contains(t, report.Papers[i].Digest, "### "+title)
	}
}

func TestRunTruncatesToCount(t *testing.T) {
	src := &mockSource{papers: []types.Paper{{Title: "A"}, {Title: "B"}, {Title: "C"}}}
	gen := &fakeGenerator{replies: []string{gnnReply}}
	report, err := newPipeline(src, gen, nil).Run(context.Background(), Request{Query: "q", Source: "mock", Count: 2})
	require.NoError(t, err)
	assert.Len(t, report.Papers, 2)
	assert.Equal(t, 2, gen.calls)
}

// --- recovered failures ---

func TestRunFetchErrorIsWarning(t *testing.T) {
	src := &mockSource{err: errors.New("HTTP 403 from proxy")}
	gen := &fakeGenerator{replies: []string{gnnReply}}

	report, err := newPipeline(src, gen, nil).Run(context.Background(), Request{Query: "q", Source: "mock", Count: 5})
	require.NoError(t, err)
	assert.Empty(t, report.Papers)
	assert.Zero(t, gen.calls, "no analysis without a fetched paper")
	require.Len(t, report.Notices, 1)
	assert.Equal(t, types.LevelWarning, report.Notices[0].Level)
	assert.Equal(t, ComponentSearch, report.Notices[0].Component)
	assert.Contains(t, report.Notices[0].Message, "HTTP 403")
}

func TestRunNoPapers(t *testing.T) {
	report, err := newPipeline(&mockSource{}, &fakeGenerator{}, nil).Run(context.Background(), Request{Query: "q", Source: "mock", Count: 5})
	require.NoError(t, err)
	assert.Empty(t, report.Papers)
	require.Len(t, report.Notices, 1)
	assert.Equal(t, types.LevelInfo, report.Notices[0].Level)
}

func TestRunAnalysisErrorContinues(t *testing.T) {
	src := &mockSource{papers: []types.Paper{{Title: "A"}, {Title: "B"}}}
	sink := &fakeSink{outcome: types.SaveOutcome{Status: types.SaveCreated}}
	p := newPipeline(src, &fakeGenerator{err: errors.New("HTTP 500")}, sink)

	report, err := p.Run(context.Background(), Request{Query: "q", Source: "mock", Count: 2, Threshold: 1, Save: true})
	require.NoError(t, err)
	require.Len(t, report.Papers, 2)
	for _, r := range report.Papers {
		assert.True(t, r.Analysis.IsEmpty())
		require.Len(t, r.Notices, 1)
		assert.Equal(t, ComponentAnalyze, r.Notices[0].Component)
		assert.NotEmpty(t, r.BibTeX)
	}
	assert.Empty(t, sink.calls, "a default score of 0 stays below threshold 1")
}

func TestRunUnusableReplyWarns(t *testing.T) {
	p := newPipeline(gnnSource(), &fakeGenerator{replies: []string{"I cannot rate this paper."}}, nil)

	report, err := p.Run(context.Background(), Request{Query: "q", Source: "mock", Count: 1})
	require.NoError(t, err)
	require.Len(t, report.Papers, 1)
	r := report.Papers[0]
	assert.True(t, r.Analysis.IsEmpty())
	require.Len(t, r.Notices, 1)
	assert.Equal(t, types.LevelWarning, r.Notices[0].Level)
	assert.Equal(t, ComponentAnalyze, r.Notices[0].Component)
	assert.Contains(t, r.Notices[0].Message, "no usable analysis")
}

func TestRunSaveOutcomesCounted(t *testing.T) {
	tests := []struct {
		name    string
		outcome types.SaveOutcome
		want    types.RunSummary
		level   types.NoticeLevel
	}{
		{"duplicate", types.SaveOutcome{Status: types.SaveDuplicate, Key: "OLD", Message: "already in library as OLD"}, types.RunSummary{Skipped: 1}, types.LevelInfo},
		{"failed", types.SaveOutcome{Status: types.SaveFailed, Message: "zotero API error (status 403)"}, types.RunSummary{Skipped: 1}, types.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{outcome: tt.outcome}
			p := newPipeline(gnnSource(), &fakeGenerator{replies: []string{gnnReply}}, sink)

			report, err := p.Run(context.Background(), Request{Query: "q", Source: "mock", Count: 1, Threshold: 3, Save: true})
			require.NoError(t, err)
			assert.Len(t, sink.calls, 1)
			assert.Equal(t, tt.want, report.Summary)
			require.Len(t, report.Papers[0].Notices, 1)
			assert.Equal(t, tt.level, report.Papers[0].Notices[0].Level)
			assert.Equal(t, ComponentZotero, report.Papers[0].Notices[0].Component)
		})
	}
}

// --- excerpts ---

func TestRunExcerpt(t *testing.T) {
	src := &mockSource{papers: []types.Paper{
		{Title: "With PDF", PDFURL: "https://x/a.pdf"},
		{Title: "arXiv", URL: "https://arxiv.org/abs/1706.03762"},
		{Title: "Landing page", URL: "https://x/landing"},
	}}
	ex := &fakeExcerpter{text: "Introduction."}
	p := newPipeline(src, &fakeGenerator{replies: []string{gnnReply}}, nil)
	p.Extractor = ex

	report, err := p.Run(context.Background(), Request{Query: "q", Source: "mock", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/a.pdf", "https://arxiv.org/pdf/1706.03762"}, ex.urls)
	assert.Equal(t, "Introduction.", report.Papers[0].Paper.Excerpt)
	assert.Empty(t, report.Papers[2].Paper.Excerpt)
}

// --- validation ---

func TestRunInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		sink Sink
	}{
		{"empty query", Request{Query: "  ", Source: "mock", Count: 5}, nil},
		{"zero count", Request{Query: "q", Source: "mock", Count: 0}, nil},
		{"count over max", Request{Query: "q", Source: "mock", Count: 51}, nil},
		{"negative threshold", Request{Query: "q", Source: "mock", Count: 5, Threshold: -1}, nil},
		{"threshold over scale", Request{Query: "q", Source: "mock", Count: 5, Threshold: 5.5}, nil},
		{"unknown source", Request{Query: "q", Source: "pubmed", Count: 5}, nil},
		{"save without sink", Request{Query: "q", Source: "mock", Count: 5, Save: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := gnnSource()
			gen := &fakeGenerator{replies: []string{gnnReply}}
			report, err := newPipeline(src, gen, tt.sink).Run(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Nil(t, report)
			assert.Zero(t, src.calls, "invalid requests never reach the source")
			assert.Zero(t, gen.calls)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &mockSource{papers: []types.Paper{{Title: "A"}}}
	gen := &fakeGenerator{replies: []string{gnnReply}}
	report, err := newPipeline(src, gen, nil).Run(ctx, Request{Query: "q", Source: "mock", Count: 1})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Papers)
	assert.Zero(t, gen.calls)
}
