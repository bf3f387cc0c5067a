// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/cre-research/internal/secrets"
	"github.com/pdiddy/cre-research/pkg/types"
)

// defaultConfig carries the built-in settings every command starts
// from.
func defaultConfig() types.ResearchConfig {
	return types.ResearchConfig{
		Adapters: types.AdapterConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "cre-research/" + version,
			},
			MaxRecords:   5,
			MinRecords:   3,
			FetchTimeout: 15 * time.Second,
			FeedTimeout:  5 * time.Second,
		},
		Synthesis: types.SynthesisConfig{
			MaxTokens: 4096,
		},
		Sessions: types.SessionConfig{
			TTL: 30 * time.Minute,
		},
		KnowledgeBase: types.KnowledgeBaseConfig{
			Path:       "kb/cre.db",
			MaxResults: 5,
		},
		Reports: types.ReportConfig{
			TTL: time.Hour,
		},
		Server: types.ServerConfig{
			Addr: ":8080",
		},
	}
}

// loadConfig layers the viper config file and environment over the
// defaults, then fills unset credentials from the secrets directory.
func loadConfig() types.ResearchConfig {
	cfg := defaultConfig()

	if v := viper.GetDuration("adapters.timeout"); v > 0 {
		cfg.Adapters.Timeout = v
	}
	if v := viper.GetString("adapters.user_agent"); v != "" {
		cfg.Adapters.UserAgent = v
	}
	if v := viper.GetInt("adapters.max_records"); v > 0 {
		cfg.Adapters.MaxRecords = v
	}
	if v := viper.GetInt("adapters.min_records"); v > 0 {
		cfg.Adapters.MinRecords = v
	}
	if v := viper.GetDuration("adapters.fetch_timeout"); v > 0 {
		cfg.Adapters.FetchTimeout = v
	}
	if v := viper.GetDuration("adapters.feed_timeout"); v > 0 {
		cfg.Adapters.FeedTimeout = v
	}
	if v := viper.GetString("adapters.openalex_email"); v != "" {
		cfg.Adapters.OpenAlexEmail = v
	}
	if v := viper.GetString("adapters.trends_api_key"); v != "" {
		cfg.Adapters.TrendsAPIKey = v
	}
	if v := viper.GetString("adapters.fred_api_key"); v != "" {
		cfg.Adapters.FREDAPIKey = v
	}
	if v := viper.GetStringSlice("adapters.feed_urls"); len(v) > 0 {
		cfg.Adapters.FeedURLs = v
	}

	if v := viper.GetString("synthesis.provider"); v != "" {
		cfg.Synthesis.Provider = types.SynthesisProvider(v)
	}
	if v := viper.GetString("synthesis.model"); v != "" {
		cfg.Synthesis.Model = v
	}
	if v := viper.GetString("synthesis.anthropic_api_key"); v != "" {
		cfg.Synthesis.AnthropicAPIKey = v
	}
	if v := viper.GetString("synthesis.gemini_api_key"); v != "" {
		cfg.Synthesis.GeminiAPIKey = v
	}
	if v := viper.GetInt("synthesis.max_tokens"); v > 0 {
		cfg.Synthesis.MaxTokens = v
	}

	if v := viper.GetDuration("sessions.ttl"); v > 0 {
		cfg.Sessions.TTL = v
	}
	if v := viper.GetString("knowledge_base.path"); v != "" {
		cfg.KnowledgeBase.Path = v
	}
	if v := viper.GetInt("knowledge_base.max_results"); v > 0 {
		cfg.KnowledgeBase.MaxResults = v
	}
	if v := viper.GetDuration("reports.ttl"); v > 0 {
		cfg.Reports.TTL = v
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := viper.GetString("keywords_file"); v != "" {
		cfg.KeywordsFile = v
	}

	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}
