package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/finsight/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	Notifiers []NotifierConfig `mapstructure:"notifiers"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// ProviderConfig selects and tunes the market data provider.
type ProviderConfig struct {
	Name      string  `mapstructure:"name"`
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second
	Timeout   int     `mapstructure:"timeout"`    // seconds
	UserAgent string  `mapstructure:"user_agent"`
}

// AnalysisConfig holds the selectable universe and report settings.
type AnalysisConfig struct {
	Companies     []core.Company `mapstructure:"companies"`
	Benchmark     core.Benchmark `mapstructure:"benchmark"`
	MaxCompanies  int            `mapstructure:"max_companies"`
	DefaultWindow string         `mapstructure:"default_window"`
	Memoize       bool           `mapstructure:"memoize"`
	Archive       bool           `mapstructure:"archive"`
}

type StorageConfig struct {
	Cold ColdStorageConfig `mapstructure:"cold"`
}

type ColdStorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// NotifierConfig configures one report-ready notifier: webhook, telegram
// or email. Params are passed through to the notifier.
type NotifierConfig struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// DefaultCompanies is the selectable universe when none is configured
func DefaultCompanies() []core.Company {
	return []core.Company{
		{Name: "Apple", Symbol: "AAPL"},
		{Name: "Microsoft", Symbol: "MSFT"},
		{Name: "Tesla", Symbol: "TSLA"},
		{Name: "Amazon", Symbol: "AMZN"},
		{Name: "Google", Symbol: "GOOGL"},
		{Name: "Meta", Symbol: "META"},
		{Name: "Netflix", Symbol: "NFLX"},
		{Name: "NVIDIA", Symbol: "NVDA"},
		{Name: "JPMorgan", Symbol: "JPM"},
		{Name: "Coca-Cola", Symbol: "KO"},
	}
}

// Load reads configuration from file, layered over Defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("FINSIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if v.IsSet("analysis.companies") {
		cfg.Analysis.Companies = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if len(cfg.Analysis.Companies) == 0 {
		cfg.Analysis.Companies = DefaultCompanies()
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Provider: ProviderConfig{
			Name:      "yahoo",
			RateLimit: 2,
			Timeout:   10,
		},
		Analysis: AnalysisConfig{
			Companies:     DefaultCompanies(),
			Benchmark:     core.DefaultBenchmark,
			MaxCompanies:  3,
			DefaultWindow: string(core.Window1Y),
			Memoize:       true,
		},
		Storage: StorageConfig{
			Cold: ColdStorageConfig{
				Type: "localfs",
				Path: "data/reports",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Provider.Name == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("provider name required"))
	}
	if c.Provider.RateLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rate_limit cannot be negative, got %f", c.Provider.RateLimit))
	}

	// Analysis validation
	if c.Analysis.MaxCompanies < 1 || c.Analysis.MaxCompanies > 3 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_companies must be between 1 and 3, got %d", c.Analysis.MaxCompanies))
	}
	if _, err := core.ParseWindow(c.Analysis.DefaultWindow); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	if c.Analysis.Benchmark.Symbol == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("benchmark symbol required"))
	}
	seen := make(map[string]struct{}, len(c.Analysis.Companies))
	for _, co := range c.Analysis.Companies {
		if co.Symbol == "" {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("company %q has no symbol", co.Name))
		}
		if _, dup := seen[co.Symbol]; dup {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("duplicate company symbol %s", co.Symbol))
		}
		seen[co.Symbol] = struct{}{}
	}

	// Storage validation
	switch c.Storage.Cold.Type {
	case "", "localfs":
	case "s3":
		if c.Storage.Cold.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("s3 bucket required when storage type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Cold.Type))
	}

	for i, n := range c.Notifiers {
		switch n.Type {
		case "webhook", "telegram", "email":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("notifiers[%d]: unknown type %q", i, n.Type))
		}
	}

	// LLM validation - if provider set, check config exists
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
		}
	}

	return nil
}
