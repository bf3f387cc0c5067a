// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cre-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AdapterConfig holds settings shared by the source adapters.
type AdapterConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRecords is the maximum number of records one provider call
	// contributes (default 5).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// MinRecords is the threshold below which an adapter tries its
	// secondary provider (default 3).
	MinRecords int `json:"min_records" yaml:"min_records"`

	// FetchTimeout bounds one adapter's whole run during fan-out
	// (default 15s).
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`

	// FeedTimeout bounds each individual news feed fetch (default 5s).
	FeedTimeout time.Duration `json:"feed_timeout" yaml:"feed_timeout"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool
	// access to the OpenAlex API.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// TrendsAPIKey authenticates against the search-trends service.
	TrendsAPIKey string `json:"trends_api_key,omitempty" yaml:"trends_api_key,omitempty"`

	// FREDAPIKey authenticates against the economic-data series API.
	FREDAPIKey string `json:"fred_api_key,omitempty" yaml:"fred_api_key,omitempty"`

	// FeedURLs overrides the built-in list of syndicated news feeds.
	FeedURLs []string `json:"feed_urls,omitempty" yaml:"feed_urls,omitempty"`
}

// SynthesisProvider identifies the language-model backend.
type SynthesisProvider string

const (
	ProviderClaude  SynthesisProvider = "claude"
	ProviderGemini  SynthesisProvider = "gemini"
	ProviderOffline SynthesisProvider = "offline"
)

// SynthesisConfig holds settings for the synthesis pipeline.
type SynthesisConfig struct {
	// Provider selects the model backend: claude, gemini, or offline.
	// When empty, the first backend with a configured key is used,
	// falling back to offline.
	Provider SynthesisProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier for the selected provider.
	Model string `json:"model" yaml:"model"`

	// AnthropicAPIKey authenticates the claude provider.
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty"`

	// GeminiAPIKey authenticates the gemini provider.
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`

	// MaxTokens caps the completion length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// SessionConfig holds settings for the session progress store.
type SessionConfig struct {
	// TTL is how long an idle session survives before eviction
	// (default 30m).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// KnowledgeBaseConfig holds settings for the local background corpus
// backing the fallback adapter's knowledge-base search.
type KnowledgeBaseConfig struct {
	// Path is the SQLite database file (default "kb/cre.db").
	Path string `json:"path" yaml:"path"`

	// MaxResults is the maximum number of knowledge-base hits
	// (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ReportConfig holds settings for the report artifact store.
type ReportConfig struct {
	// TTL is how long a generated artifact remains downloadable
	// (default 1h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// ResearchConfig groups all component configurations.
type ResearchConfig struct {
	Adapters      AdapterConfig       `json:"adapters" yaml:"adapters"`
	Synthesis     SynthesisConfig     `json:"synthesis" yaml:"synthesis"`
	Sessions      SessionConfig       `json:"sessions" yaml:"sessions"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base"`
	Reports       ReportConfig        `json:"reports" yaml:"reports"`
	Server        ServerConfig        `json:"server" yaml:"server"`

	// KeywordsFile optionally overrides the built-in categorizer
	// keyword tables with a YAML file.
	KeywordsFile string `json:"keywords_file,omitempty" yaml:"keywords_file,omitempty"`
}
