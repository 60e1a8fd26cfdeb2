package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Search: SearchConfig{
			Endpoint:  "https://acct.search.windows.net",
			IndexName: "documents",
			APIKey:    "search-key",
		},
		OpenAI: OpenAIConfig{
			APIKey: "openai-key",
		},
	}
}

func TestValidate_InvalidProvider(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.Provider = "anthropic"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid provider")
	}

	expected := `openai.provider must be "openai" or "azure", got "anthropic"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidProviders(t *testing.T) {
	validProviders := []string{"", "openai", "azure"}

	for _, provider := range validProviders {
		t.Run("provider="+provider, func(t *testing.T) {
			cfg := validConfig()
			cfg.OpenAI.Provider = provider

			err := cfg.Validate()
			if err != nil {
				t.Fatalf("unexpected error for valid provider %q: %v", provider, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"search endpoint", func(c *Config) { c.Search.Endpoint = "" }, "search.endpoint"},
		{"search index", func(c *Config) { c.Search.IndexName = "" }, "search.index_name"},
		{"search key", func(c *Config) { c.Search.APIKey = "" }, "search.api_key"},
		{"openai key", func(c *Config) { c.OpenAI.APIKey = "" }, "openai.api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error for missing %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_PipelineBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Temperature = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for temperature above 1")
	}

	cfg = validConfig()
	cfg.Pipeline.MaxTokens = 10000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max_tokens above 8192")
	}

	cfg = validConfig()
	cfg.Pipeline.TopDocuments = 100
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for top_documents above 50")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Search.TimeoutSec != 30 {
		t.Errorf("expected Search.TimeoutSec=30, got %d", cfg.Search.TimeoutSec)
	}
	if cfg.OpenAI.Model != "gpt-4" {
		t.Errorf("expected Model='gpt-4', got %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Provider != "openai" {
		t.Errorf("expected Provider='openai', got %q", cfg.OpenAI.Provider)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("expected Cache.TTLSec=300, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Pipeline.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %g", cfg.Pipeline.Temperature)
	}
	if cfg.Pipeline.MaxTokens != 2000 {
		t.Errorf("expected MaxTokens=2000, got %d", cfg.Pipeline.MaxTokens)
	}
	if cfg.Pipeline.TopDocuments != 10 {
		t.Errorf("expected TopDocuments=10, got %d", cfg.Pipeline.TopDocuments)
	}
}

func TestApplyDefaults_AzureProvider(t *testing.T) {
	cfg := Config{
		OpenAI: OpenAIConfig{AzureEndpoint: "https://acct.openai.azure.com"},
	}
	cfg.ApplyDefaults()

	if cfg.OpenAI.Provider != "azure" {
		t.Errorf("expected Provider='azure', got %q", cfg.OpenAI.Provider)
	}
	if cfg.OpenAI.AzureAPIVersion != "2024-02-15-preview" {
		t.Errorf("expected AzureAPIVersion='2024-02-15-preview', got %q", cfg.OpenAI.AzureAPIVersion)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Search:   SearchConfig{TimeoutSec: 15},
		OpenAI:   OpenAIConfig{Model: "gpt-4o", Provider: "openai"},
		Cache:    CacheConfig{TTLSec: 60},
		Pipeline: PipelineConfig{Temperature: 0.2, MaxTokens: 800, TopDocuments: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Search.TimeoutSec != 15 {
		t.Errorf("expected Search.TimeoutSec=15, got %d", cfg.Search.TimeoutSec)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("expected Model='gpt-4o', got %q", cfg.OpenAI.Model)
	}
	if cfg.Pipeline.Temperature != 0.2 {
		t.Errorf("expected Temperature=0.2, got %g", cfg.Pipeline.Temperature)
	}
}

func TestCacheConfig_Enabled(t *testing.T) {
	if (CacheConfig{}).Enabled() {
		t.Error("expected empty cache config to be disabled")
	}
	if !(CacheConfig{Addrs: []string{"localhost:6379"}}).Enabled() {
		t.Error("expected cache config with addrs to be enabled")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ASKDEX_TEST_KEY", "secret")

	in := []byte("api_key: ${ASKDEX_TEST_KEY}\nmodel: ${ASKDEX_TEST_MODEL:-gpt-4}\nempty: ${ASKDEX_TEST_UNSET}")
	out := string(expandEnvVars(in))

	if !strings.Contains(out, "api_key: secret") {
		t.Errorf("expected env var substitution, got %q", out)
	}
	if !strings.Contains(out, "model: gpt-4") {
		t.Errorf("expected default value substitution, got %q", out)
	}
	if !strings.Contains(out, "empty: \n") && !strings.HasSuffix(out, "empty: ") {
		t.Errorf("expected unset var to expand empty, got %q", out)
	}
}
