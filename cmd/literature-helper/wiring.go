package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-helper/internal/analyze"
	"github.com/pdiddy/literature-helper/internal/extract"
	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/internal/pipeline"
	"github.com/pdiddy/literature-helper/internal/search"
	"github.com/pdiddy/literature-helper/internal/zotero"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// buildPipeline wires every component from cfg. Extraction is attached
// only when enabled and the sink only when Zotero credentials are present.
func buildPipeline(ctx context.Context, cfg types.Config, log *zap.Logger) (*pipeline.Pipeline, analyze.Generator, error) {
	client := httputil.NewClient(cfg.HTTP)

	gen, err := analyze.NewGenerator(ctx, cfg.LLM, client)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring language model: %w", err)
	}

	p := &pipeline.Pipeline{
		Sources:  search.NewRegistry(search.NewSources(cfg, client)...),
		Analyzer: analyze.New(gen, cfg.Analysis),
		MaxCount: cfg.Pipeline.MaxCount,
		Log:      log,
	}
	if cfg.Extract.Enabled {
		p.Extractor = extract.New(cfg.Extract, cfg.HTTP, client)
	}
	if cfg.Zotero.Configured() {
		zc, err := zotero.NewClient(cfg.Zotero,
			zotero.WithHTTPClient(client),
			zotero.WithUserAgent(cfg.HTTP.UserAgent),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("configuring zotero: %w", err)
		}
		p.Sink = zotero.NewSink(zc, cfg.Zotero.CollectionID, log.Named("zotero"))
	}
	return p, gen, nil
}
