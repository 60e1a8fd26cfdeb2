package askdex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	searchEndpoint   string
	searchIndex      string
	searchAPIKey     string
	searchAPIVersion string
	searchTimeout    time.Duration

	openaiAPIKey    string
	openaiBaseURL   string
	azureEndpoint   string
	azureAPIVersion string
	model           string
	provider        string

	cacheAddrs    []string
	cacheUsername string
	cachePassword string
	cacheDB       int
	cacheTTL      time.Duration

	temperature  float64
	maxTokens    int
	topDocuments int

	logger *zap.Logger
}

// WithSearchIndex configures the document index connection. Required.
func WithSearchIndex(endpoint, indexName, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchEndpoint = endpoint
		c.searchIndex = indexName
		c.searchAPIKey = apiKey
	})
}

// WithSearchAPIVersion overrides the index REST api-version.
func WithSearchAPIVersion(version string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchAPIVersion = version
	})
}

// WithSearchTimeout bounds each index request. Default: 30s.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithOpenAI configures generation against the OpenAI API (or any
// compatible endpoint via baseURL; pass "" for the default).
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openaiAPIKey = apiKey
		c.openaiBaseURL = baseURL
		c.provider = "openai"
	})
}

// WithAzureOpenAI configures generation against an Azure OpenAI deployment.
// The deployment name is set with WithModel.
func WithAzureOpenAI(endpoint, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.azureEndpoint = endpoint
		c.openaiAPIKey = apiKey
		c.provider = "azure"
	})
}

// WithAzureAPIVersion overrides the Azure OpenAI api-version.
func WithAzureAPIVersion(version string) Option {
	return optionFunc(func(c *clientConfig) {
		c.azureAPIVersion = version
	})
}

// WithModel sets the model name (or Azure deployment). Default: gpt-4.
func WithModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = model
	})
}

// WithFacetCache enables the Redis/Valkey facet cache. Disabled by default.
func WithFacetCache(addrs []string, username, password string, db int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cacheUsername = username
		c.cachePassword = password
		c.cacheDB = db
		c.cacheTTL = ttl
	})
}

// WithDefaults sets the generation parameters applied when a query omits
// them. Defaults: temperature 0.7, 2000 tokens, 10 documents.
func WithDefaults(temperature float64, maxTokens, topDocuments int) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = temperature
		c.maxTokens = maxTokens
		c.topDocuments = topDocuments
	})
}

// WithLogger enables structured logging for pipeline operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
