package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trial-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
// The model is explicit per call site; there is no process-wide current model.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RegistryConfig holds settings for fetching trial documents from the
// registry API.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline"`

	// CacheDir is the directory for cached trial documents (one JSON file per NCT id).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// FetchDelay is the delay between consecutive registry fetches (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`
}

// AnalyzeConfig holds settings for the trial analysis stage.
type AnalyzeConfig struct {
	AIConfig `yaml:",inline"`

	// ForceReanalyze re-runs analysis for trials already in the store.
	ForceReanalyze bool `json:"force_reanalyze" yaml:"force_reanalyze"`
}

// StoreConfig holds settings for the analysis-row store.
type StoreConfig struct {
	// IndexDir is the directory holding the SQLite database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// QueryConfig holds settings for the query translation stage.
type QueryConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Analyze  AnalyzeConfig  `json:"analyze" yaml:"analyze"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Query    QueryConfig    `json:"query" yaml:"query"`
}
