package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the claimsage API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	Cache      CacheConfig      `yaml:"cache"`
	Pool       PoolConfig       `yaml:"pool"`
	Datasets   DatasetsConfig   `yaml:"datasets"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// GenerationConfig holds completion provider settings.
type GenerationConfig struct {
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	TopP        float32 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// KeyPhrase is a domain phrase whose verbatim presence boosts an evidence
// document's hybrid score.
type KeyPhrase struct {
	Phrase string  `yaml:"phrase"`
	Weight float64 `yaml:"weight"`
}

// RetrievalConfig holds vector retrieval and ranking settings.
type RetrievalConfig struct {
	TopK                int         `yaml:"top_k"`
	SimilarityThreshold float64     `yaml:"similarity_threshold"`
	KeyPhrases          []KeyPhrase `yaml:"key_phrases"`
}

// RateLimitConfig holds admission control settings. TrustProxy controls
// whether client keys may come from X-Real-IP / X-Forwarded-For; only
// enable it behind a proxy that overwrites those headers.
type RateLimitConfig struct {
	MaxRequests int  `yaml:"max_requests"`
	WindowSec   int  `yaml:"window_sec"`
	TrustProxy  bool `yaml:"trust_proxy"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// PoolConfig holds worker pool settings.
type PoolConfig struct {
	Workers int `yaml:"workers"`
}

// DatasetsConfig holds reference dataset file paths.
type DatasetsConfig struct {
	Dir                 string `yaml:"dir"`
	FAQ                 string `yaml:"faq"`
	DisabilityStandards string `yaml:"disability_standards"`
	OccupationalRules   string `yaml:"occupational_rules"`
	MedicalBenefits     string `yaml:"medical_benefits"`
	BenefitStandards    string `yaml:"benefit_standards"`
	Offices             string `yaml:"offices"`
	Facilities          string `yaml:"facilities"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// DefaultKeyPhrases are the discriminating disability-classification phrases
// found during development. The list is configuration, not logic: it is not
// assumed exhaustive and can be replaced wholesale from YAML.
func DefaultKeyPhrases() []KeyPhrase {
	return []KeyPhrase{
		{Phrase: "permanently unfit for any work", Weight: 10},
		{Phrase: "permanently fit only for light work", Weight: 10},
		{Phrase: "fit only for light work", Weight: 10},
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 768
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.SimilarityThreshold <= 0 {
		c.Retrieval.SimilarityThreshold = 0.6
	}
	if len(c.Retrieval.KeyPhrases) == 0 {
		c.Retrieval.KeyPhrases = DefaultKeyPhrases()
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = 20
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 1000
	}
	if c.Pool.Workers <= 0 {
		c.Pool.Workers = 4
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.3
	}
	if c.Generation.TopP <= 0 {
		c.Generation.TopP = 0.8
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 300
	}
	if c.Datasets.Dir == "" {
		c.Datasets.Dir = "data"
	}
	applyDatasetDefaults(&c.Datasets)
}

func applyDatasetDefaults(d *DatasetsConfig) {
	defaults := []struct {
		field *string
		name  string
	}{
		{&d.FAQ, "faq.json"},
		{&d.DisabilityStandards, "disability_standards.json"},
		{&d.OccupationalRules, "occupational_rules.json"},
		{&d.MedicalBenefits, "medical_benefits.json"},
		{&d.BenefitStandards, "benefit_standards.json"},
		{&d.Offices, "offices.json"},
		{&d.Facilities, "facilities.json"},
	}
	for _, def := range defaults {
		if *def.field == "" {
			*def.field = filepath.Join(d.Dir, def.name)
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("retrieval.similarity_threshold must be in (0,1], got %g", c.Retrieval.SimilarityThreshold)
	}
	for i, kp := range c.Retrieval.KeyPhrases {
		if kp.Phrase == "" {
			return fmt.Errorf("retrieval.key_phrases[%d].phrase is empty", i)
		}
		if kp.Weight < 0 {
			return fmt.Errorf("retrieval.key_phrases[%d].weight must be non-negative, got %g", i, kp.Weight)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
