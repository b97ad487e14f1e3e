package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultModel     = "llama3-70b-8192"
	DefaultAPIKeyEnv = "GROQ_API_KEY"
)

// DocumentConfig locates the resume the service answers questions about.
type DocumentConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ChunkerConfig configures how the document is split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type" validate:"oneof=window recursive sentence"`
	Size              int    `yaml:"size" validate:"gt=0"`
	Overlap           int    `yaml:"overlap" validate:"gte=0,ltfield=Size"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk" validate:"gte=0"`
	OverlapSentences  int    `yaml:"overlap_sentences" validate:"gte=0"`
}

// RetrieverConfig configures ranking.
type RetrieverConfig struct {
	TopK      int  `yaml:"top_k" validate:"gt=0"`
	Stopwords bool `yaml:"stopwords"`
}

// LLMConfig holds settings for the OpenAI-compatible completion endpoint.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url" validate:"required,url"`
	APIKeyEnv   string  `yaml:"api_key_env" validate:"required"`
	Model       string  `yaml:"model" validate:"required"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"gt=0"`
	MaxRetries  int     `yaml:"max_retries" validate:"gte=0,lte=10"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr                string `yaml:"addr" validate:"required,hostname_port"`
	ReadTimeoutSecs     int    `yaml:"read_timeout_secs" validate:"gt=0"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs" validate:"gt=0"`
}

// CacheConfig sizes the answer cache. Zero disables caching.
type CacheConfig struct {
	Size int `yaml:"size" validate:"gte=0"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Document  DocumentConfig  `yaml:"document"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retriever RetrieverConfig `yaml:"retriever"`
	LLM       LLMConfig       `yaml:"llm"`
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads a config from path, applies environment overrides and
// validates the result. If the file does not exist, defaults are used.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Document:  DocumentConfig{Path: "resume.txt"},
		Chunker:   ChunkerConfig{Type: "window", Size: 1000, Overlap: 200, SentencesPerChunk: 5, OverlapSentences: 1},
		Retriever: RetrieverConfig{TopK: 3},
		LLM: LLMConfig{
			BaseURL:     DefaultBaseURL,
			APIKeyEnv:   DefaultAPIKeyEnv,
			Model:       DefaultModel,
			TimeoutSecs: 30,
			MaxRetries:  2,
		},
		Server:  ServerConfig{Addr: "0.0.0.0:8000", ReadTimeoutSecs: 15, ShutdownTimeoutSecs: 10},
		Cache:   CacheConfig{Size: 128},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// APIKey resolves the LLM API key from the configured environment variable.
func (c *AppConfig) APIKey() (string, error) {
	key := os.Getenv(c.LLM.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", c.LLM.APIKeyEnv)
	}
	return key, nil
}

func (c *LLMConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSecs) * time.Second }

func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSecs) * time.Second
}

func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("RESUME_PATH"); v != "" {
		cfg.Document.Path = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Retriever.TopK = k
		}
	}
}
