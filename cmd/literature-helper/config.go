package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/literature-helper/internal/secrets"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// setDefaults registers every configuration key with its default so that
// environment variables and Unmarshal see the full key set.
func setDefaults(v *viper.Viper) {
	def := types.DefaultConfig()

	v.SetDefault("http.timeout", def.HTTP.Timeout)
	v.SetDefault("http.user_agent", def.HTTP.UserAgent)

	v.SetDefault("search.scrape_proxy_url", def.Search.ScrapeProxyURL)
	v.SetDefault("search.scholar_url", def.Search.ScholarURL)
	v.SetDefault("search.semantic_scholar_url", def.Search.SemanticScholarURL)
	v.SetDefault("search.arxiv_url", def.Search.ArxivURL)
	v.SetDefault("search.openalex_url", def.Search.OpenAlexURL)
	v.SetDefault("search.openalex_email", def.Search.OpenAlexEmail)

	v.SetDefault("llm.backend", string(def.LLM.Backend))
	v.SetDefault("llm.model", def.LLM.Model)
	v.SetDefault("llm.base_url", def.LLM.BaseURL)

	v.SetDefault("analysis.num_tags", def.Analysis.NumTags)
	v.SetDefault("analysis.summary_words", def.Analysis.SummaryWords)
	v.SetDefault("analysis.score_max", def.Analysis.ScoreMax)

	v.SetDefault("extract.enabled", def.Extract.Enabled)
	v.SetDefault("extract.max_chars", def.Extract.MaxChars)
	v.SetDefault("extract.max_bytes", def.Extract.MaxBytes)

	v.SetDefault("zotero.base_url", def.Zotero.BaseURL)
	v.SetDefault("zotero.library_type", def.Zotero.LibraryType)

	v.SetDefault("pipeline.max_count", def.Pipeline.MaxCount)

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.session_ttl", def.Server.SessionTTL)

	v.SetDefault("log.debug", false)
}

// loadConfig decodes v into a Config. Secrets are not part of the file
// and are applied separately.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if s := cfg.Analysis.ScoreMax; s != 1 && s != 5 {
		return cfg, fmt.Errorf("analysis.score_max must be 1 or 5, got %v", s)
	}
	switch cfg.LLM.Backend {
	case types.BackendREST, types.BackendGenAI:
	default:
		return cfg, fmt.Errorf("llm.backend must be %s or %s, got %q", types.BackendREST, types.BackendGenAI, cfg.LLM.Backend)
	}
	return cfg, nil
}

// applySecrets copies API keys into cfg. A non-empty override wins over
// the loaded secret.
func applySecrets(cfg *types.Config, geminiOverride, collectionOverride string) {
	cfg.Search.ScrapeProxyKey = secretValue(secrets.ScraperAPIKey, "")
	cfg.Search.SemanticScholarKey = secretValue(secrets.SemanticScholarKey, "")
	cfg.LLM.APIKey = secretValue(secrets.GeminiKey, geminiOverride)
	cfg.Zotero.APIKey = secretValue(secrets.ZoteroKey, "")
	cfg.Zotero.LibraryID = secretValue(secrets.ZoteroUserID, "")
	cfg.Zotero.CollectionID = secretValue(secrets.ZoteroCollectionID, collectionOverride)
}

// commandConfig loads configuration and secrets for cmd.
func commandConfig(cmd *cobra.Command) (types.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	gemini, _ := cmd.Flags().GetString("gemini-api-key")
	collection := ""
	if f := cmd.Flags().Lookup("zotero-collection-id"); f != nil {
		collection = f.Value.String()
	}
	applySecrets(&cfg, gemini, collection)
	return cfg, nil
}
