// Package config provides configuration loading and structs for the serupa server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where installed binaries look for their config first.
const DefaultConfigPath = "/usr/local/etc/serupa/config.yaml"

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Models     ModelsConfig     `yaml:"models"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Rules      RulesConfig      `yaml:"rules"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	ReadTimeoutSec    int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int    `yaml:"write_timeout_sec"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	ShutdownSec       int    `yaml:"shutdown_sec"`
}

// ModelsConfig locates the pre-built artifacts. File names are relative to Dir unless absolute.
type ModelsConfig struct {
	Dir         string `yaml:"dir"`
	IndexFile   string `yaml:"index_file"`
	RecordsFile string `yaml:"records_file"`
	IndexType   string `yaml:"index_type"`
}

// IndexPath returns the nearest-neighbor index file path.
func (m ModelsConfig) IndexPath() string {
	return m.resolve(m.IndexFile)
}

// RecordsPath returns the record table path.
func (m ModelsConfig) RecordsPath() string {
	return m.resolve(m.RecordsFile)
}

func (m ModelsConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.Dir, name)
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider      string       `yaml:"provider"`
	ModelPath     string       `yaml:"model_path"`
	TokenizerPath string       `yaml:"tokenizer_path"`
	LibraryPath   string       `yaml:"library_path"`
	OutputName    string       `yaml:"output_name"`
	Dimensions    int          `yaml:"dimensions"`
	MaxTokens     int          `yaml:"max_tokens"`
	CacheSize     int          `yaml:"cache_size"`
	OpenAI        OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// PreprocessConfig tunes the query normalizer.
type PreprocessConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// RulesConfig points at an external tagger rule table; empty uses the built-in one.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// Load reads and parses the config file at path, applies defaults, expands paths
// relative to the config directory and applies environment overrides. A .env file in
// the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(&cfg, filepath.Dir(path))
}

// Default returns the configuration used when no config file exists: defaults plus
// environment overrides, with relative paths resolved against the working directory.
func Default() (*Config, error) {
	_ = godotenv.Load()
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return finish(&Config{}, wd)
}

// Find returns the first existing config file among DefaultConfigPath and ./config.yaml,
// or "" when there is none.
func Find() string {
	for _, p := range []string{DefaultConfigPath, "config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func finish(cfg *Config, baseDir string) (*Config, error) {
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	cfg.Models.Dir = expandPath(cfg.Models.Dir, baseDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, baseDir)
	cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, baseDir)
	cfg.Embedding.LibraryPath = expandPath(cfg.Embedding.LibraryPath, baseDir)
	cfg.Rules.Path = expandPath(cfg.Rules.Path, baseDir)
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = filepath.Join(cfg.Models.Dir, DefaultONNXModelFile)
	}
	if cfg.Embedding.TokenizerPath == "" {
		cfg.Embedding.TokenizerPath = filepath.Join(cfg.Models.Dir, DefaultTokenizerFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Embedding.Provider {
	case "onnx", "openai", "mock":
	default:
		return fmt.Errorf("embedding.provider must be onnx, openai or mock, got %q", c.Embedding.Provider)
	}
	switch c.Models.IndexType {
	case "faiss", "memory":
	default:
		return fmt.Errorf("models.index_type must be faiss or memory, got %q", c.Models.IndexType)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnv overrides file values with SERUPA_* environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("SERUPA_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERUPA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERUPA_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("SERUPA_MODEL_DIR"); v != "" {
		cfg.Models.Dir = v
	}
	if v := os.Getenv("SERUPA_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("SERUPA_OPENAI_API_KEY"); v != "" {
		cfg.Embedding.OpenAI.APIKey = v
	}
	if v := os.Getenv("SERUPA_OPENAI_BASE_URL"); v != "" {
		cfg.Embedding.OpenAI.BaseURL = v
	}
	if v := os.Getenv("SERUPA_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SERUPA_DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to baseDir;
// other relative paths are relative to the home directory. Empty stays empty.
func expandPath(path string, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(baseDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
