package model

import "time"

// Config is the complete biaslens configuration
type Config struct {
	Remote       RemoteConfig      `yaml:"remote" mapstructure:"remote"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// RemoteConfig configures the client side of the analysis service
type RemoteConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`             // Service root, e.g. http://localhost:8080
	Endpoint     string        `yaml:"endpoint" mapstructure:"endpoint"`             // Analysis path
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`               // 0 waits indefinitely
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"` // Response read limit
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig configures the model behind the serve command
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic
	Model     string `yaml:"model" mapstructure:"model"` // Empty uses the provider default
	APIKey    string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Host              string        `yaml:"host" mapstructure:"host"`
	Port              string        `yaml:"port" mapstructure:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxTextLength     int           `yaml:"max_text_length" mapstructure:"max_text_length"`         // Characters
	TrustProxyHeaders bool          `yaml:"trust_proxy_headers" mapstructure:"trust_proxy_headers"` // Key rate limits on X-Forwarded-For / X-Real-IP
}

// CacheConfig configures the server's in-memory response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitConfig configures request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // human, json, yaml, markdown
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			BaseURL:      "http://localhost:8080",
			Endpoint:     "/api/analyze-text",
			Timeout:      0,
			UserAgent:    "biaslens/0.1 (+https://github.com/ppiankov/biaslens)",
			MaxBodyBytes: 1_000_000,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Server: ServerConfig{
			Host:          "127.0.0.1",
			Port:          "8080",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  90 * time.Second,
			MaxTextLength: 20_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format: "human",
		},
	}
}
