package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "literature-helper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds endpoints and keys for the source adapters.
type SearchConfig struct {
	// ScrapeProxyURL is the proxying fetch endpoint used by the scrape strategy.
	ScrapeProxyURL string `json:"scrape_proxy_url" yaml:"scrape_proxy_url" mapstructure:"scrape_proxy_url"`

	// ScrapeProxyKey is the api_key sent to the scrape proxy.
	ScrapeProxyKey string `json:"-" yaml:"-" mapstructure:"-"`

	// ScholarURL is the search-engine results page the proxy fetches.
	ScholarURL string `json:"scholar_url" yaml:"scholar_url" mapstructure:"scholar_url"`

	// SemanticScholarURL is the structured paper search endpoint.
	SemanticScholarURL string `json:"semantic_scholar_url" yaml:"semantic_scholar_url" mapstructure:"semantic_scholar_url"`

	// SemanticScholarKey is sent as the x-api-key header.
	SemanticScholarKey string `json:"-" yaml:"-" mapstructure:"-"`

	// ArxivURL is the arXiv export API query endpoint.
	ArxivURL string `json:"arxiv_url" yaml:"arxiv_url" mapstructure:"arxiv_url"`

	// OpenAlexURL is the OpenAlex works endpoint.
	OpenAlexURL string `json:"openalex_url" yaml:"openalex_url" mapstructure:"openalex_url"`

	// OpenAlexEmail is sent as mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// LLMBackend selects how the analyzer talks to the language model.
type LLMBackend string

const (
	BackendREST  LLMBackend = "rest"
	BackendGenAI LLMBackend = "genai"
)

// LLMConfig holds settings for the language-model generation endpoint.
type LLMConfig struct {
	// Backend is rest (plain generateContent calls) or genai (Google SDK).
	Backend LLMBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the API root, without the /models/{model} suffix.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`
}

// AnalysisConfig shapes the relevance prompt and the score scale.
type AnalysisConfig struct {
	// NumTags is how many descriptive tags to request (default 5).
	NumTags int `json:"num_tags" yaml:"num_tags" mapstructure:"num_tags"`

	// SummaryWords bounds the summary length (default 120).
	SummaryWords int `json:"summary_words" yaml:"summary_words" mapstructure:"summary_words"`

	// ScoreMax is the top of the relevance scale, 1 or 5 (default 5).
	ScoreMax float64 `json:"score_max" yaml:"score_max" mapstructure:"score_max"`
}

// ExtractConfig holds settings for best-effort document text extraction.
type ExtractConfig struct {
	// Enabled turns extraction on for papers with a PDF link.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// MaxChars is the excerpt character budget (default 4000).
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`

	// MaxBytes caps the downloaded document size (default 20 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes" mapstructure:"max_bytes"`
}

// ZoteroConfig holds reference-manager credentials. Only required when
// saving is enabled.
type ZoteroConfig struct {
	BaseURL      string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	LibraryType  string `json:"library_type" yaml:"library_type" mapstructure:"library_type"`
	APIKey       string `json:"-" yaml:"-" mapstructure:"-"`
	LibraryID    string `json:"-" yaml:"-" mapstructure:"-"`
	CollectionID string `json:"-" yaml:"-" mapstructure:"-"`
}

// Configured reports whether enough credentials are present to talk to Zotero.
func (z ZoteroConfig) Configured() bool {
	return z.APIKey != "" && z.LibraryID != ""
}

// PipelineConfig bounds user-supplied run parameters.
type PipelineConfig struct {
	// MaxCount is the largest accepted paper count per run (default 50).
	MaxCount int `json:"max_count" yaml:"max_count" mapstructure:"max_count"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// SessionTTL expires idle sessions (default 1h).
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`
}

// Config groups all component configurations. It is read once at startup
// and treated as read-only afterward.
type Config struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	LLM      LLMConfig      `json:"llm" yaml:"llm" mapstructure:"llm"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Extract  ExtractConfig  `json:"extract" yaml:"extract" mapstructure:"extract"`
	Zotero   ZoteroConfig   `json:"zotero" yaml:"zotero" mapstructure:"zotero"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "literature-helper/0.1",
		},
		Search: SearchConfig{
			ScrapeProxyURL:     "https://api.scraperapi.com/",
			ScholarURL:         "https://scholar.google.com/scholar",
			SemanticScholarURL: "https://api.semanticscholar.org/graph/v1/paper/search",
			ArxivURL:           "https://export.arxiv.org/api/query",
			OpenAlexURL:        "https://api.openalex.org/works",
		},
		LLM: LLMConfig{
			Backend: BackendREST,
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
		Analysis: AnalysisConfig{
			NumTags:      5,
			SummaryWords: 120,
			ScoreMax:     5,
		},
		Extract: ExtractConfig{
			MaxChars: 4000,
			MaxBytes: 20 << 20,
		},
		Zotero: ZoteroConfig{
			BaseURL:     "https://api.zotero.org",
			LibraryType: "user",
		},
		Pipeline: PipelineConfig{MaxCount: 50},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: time.Hour,
		},
	}
}
