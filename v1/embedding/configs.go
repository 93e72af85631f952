package embedding

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// ProviderOpenAI talks to any OpenAI-compatible /embeddings endpoint
	// (OpenAI, vLLM, text-embeddings-inference, ...).
	ProviderOpenAI = "openai"

	// ProviderAzure talks to an Azure OpenAI deployment. The endpoint must be
	// the deployment URL; the key goes into the api-key header.
	ProviderAzure = "azure"

	DefaultModel           = "text-embedding-3-small"
	DefaultAzureAPIVersion = "2024-02-01"
	defaultTimeoutSeconds  = 30
)

// Config holds the settings for the embedding provider.
//
// Values are normally loaded through the config package, which also honours
// the EMBEDDING_* environment variables read by NewConfig.
type Config struct {
	Provider     string `yaml:"provider" env:"EMBEDDING_PROVIDER"`
	Endpoint     string `yaml:"endpoint" env:"EMBEDDING_ENDPOINT"`
	APIKey       string `yaml:"api_key" env:"EMBEDDING_API_KEY"`
	Model        string `yaml:"model" env:"EMBEDDING_MODEL"`
	APIVersion   string `yaml:"api_version" env:"EMBEDDING_API_VERSION"`
	HTTPTimeoutS int    `yaml:"http_timeout_seconds" env:"EMBEDDING_HTTP_TIMEOUT_SECONDS"`
}

// NewConfig reads the configuration from the environment only.
func NewConfig() *Config {
	timeout := defaultTimeoutSeconds
	if v := os.Getenv("EMBEDDING_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}

	cfg := &Config{
		Provider:     os.Getenv("EMBEDDING_PROVIDER"),
		Endpoint:     os.Getenv("EMBEDDING_ENDPOINT"),
		APIKey:       os.Getenv("EMBEDDING_API_KEY"),
		Model:        os.Getenv("EMBEDDING_MODEL"),
		APIVersion:   os.Getenv("EMBEDDING_API_VERSION"),
		HTTPTimeoutS: timeout,
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Provider == ProviderAzure && c.APIVersion == "" {
		c.APIVersion = DefaultAzureAPIVersion
	}
	if c.HTTPTimeoutS <= 0 {
		c.HTTPTimeoutS = defaultTimeoutSeconds
	}
}

// Validate reports missing or inconsistent settings.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_ENDPOINT")
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderAzure:
	default:
		return fmt.Errorf("embedding: unknown provider %q", c.Provider)
	}
	if c.Provider == ProviderAzure && c.APIKey == "" {
		return fmt.Errorf("embedding: azure provider requires EMBEDDING_API_KEY")
	}
	return nil
}
