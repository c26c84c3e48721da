package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hession/reagent/internal/logger"
	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path
	// Can be set via SetConfigDir before loading config
	configDir     string
	configDirInit bool
)

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory
// Priority: 1. Manually set via SetConfigDir, 2. ./config in current directory
func GetConfigDir() string {
	if !configDirInit {
		cwd, err := os.Getwd()
		if err == nil {
			configDir = filepath.Join(cwd, "config")
		}
		configDirInit = true
	}
	return configDir
}

// DefaultStopSequence ends a completion before the model invents its own observation
const DefaultStopSequence = "\nObservation"

// Config application configuration structure
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Generation GenerationConfig `yaml:"generation"`
	Agent      AgentConfig      `yaml:"agent"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ModelConfig chat completion endpoint used by the reasoning loop
type ModelConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	Stream         bool    `yaml:"stream"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// GenerationConfig settings for the generate_text tool
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// AgentConfig bounds the reasoning loop
type AgentConfig struct {
	MaxIterations      int      `yaml:"max_iterations"`
	MaxDurationSeconds int      `yaml:"max_duration_seconds"`
	Stop               StopSequences `yaml:"stop"`
}

// StopSequences is written as double-quoted strings so control
// characters such as the leading newline survive a save and load.
type StopSequences []string

// MarshalYAML implements yaml.Marshaler
func (s StopSequences) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, seq := range s {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: seq,
			Style: yaml.DoubleQuotedStyle,
		})
	}
	return node, nil
}

// LoggingConfig log output configuration
type LoggingConfig struct {
	Level   string `yaml:"level"`
	MaxDays int    `yaml:"max_days"`
	Console bool   `yaml:"console"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			APIKey:         "",
			BaseURL:        "https://api.openai.com",
			Model:          "gpt-3.5-turbo",
			Temperature:    0,
			MaxTokens:      1024,
			Stream:         false,
			TimeoutSeconds: 120,
		},
		Generation: GenerationConfig{
			Temperature: 0.7,
			MaxTokens:   512,
		},
		Agent: AgentConfig{
			MaxIterations:      15,
			MaxDurationSeconds: 300,
			Stop:               []string{DefaultStopSequence},
		},
		Logging: LoggingConfig{
			Level:   "info",
			MaxDays: 7,
			Console: false,
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return dir, nil
}

// LogDir returns the log directory path
func LogDir() string {
	dir := GetConfigDir()
	if dir == "" {
		return "logs"
	}
	return filepath.Join(dir, "logs")
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file and merges with secrets
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Write defaults so the user has a file to edit; the key stays out of it
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := mergeSecrets(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig() // Use default values as base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := mergeSecrets(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeSecrets fills the API key from secrets when the config leaves it empty
func mergeSecrets(cfg *Config) error {
	if cfg.Model.APIKey != "" {
		return nil
	}
	secrets, err := LoadSecrets()
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if apiKey := secrets.GetOpenAIAPIKey(); apiKey != "" {
		cfg.Model.APIKey = apiKey
	}
	return nil
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	content := "# reagent configuration file\n# The API key can also come from OPENAI_API_KEY, .env or config/.secrets\n\n" + string(data)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Model.BaseURL == "" {
		return fmt.Errorf("config error: model.base_url cannot be empty")
	}
	if c.Model.Model == "" {
		return fmt.Errorf("config error: model.model cannot be empty")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("config error: model.temperature must be between 0 and 2")
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("config error: model.max_tokens must be greater than 0")
	}
	if c.Model.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: model.timeout_seconds must be greater than 0")
	}

	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("config error: generation.temperature must be between 0 and 2")
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("config error: generation.max_tokens must be greater than 0")
	}

	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("config error: agent.max_iterations must be greater than 0")
	}
	if c.Agent.MaxDurationSeconds < 0 {
		return fmt.Errorf("config error: agent.max_duration_seconds cannot be negative")
	}
	for _, stop := range c.Agent.Stop {
		if stop == "" {
			return fmt.Errorf("config error: agent.stop cannot contain empty sequences")
		}
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config error: logging.level: %w", err)
	}

	return nil
}

// IsAPIKeyConfigured checks if API key is configured
func (c *Config) IsAPIKeyConfigured() bool {
	return c.Model.APIKey != ""
}

// Timeout returns the HTTP timeout for completion requests
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// MaxDuration returns the wall-clock bound of one run, zero meaning none
func (c *Config) MaxDuration() time.Duration {
	return time.Duration(c.Agent.MaxDurationSeconds) * time.Second
}

// String returns string representation of config (hides sensitive info)
func (c *Config) String() string {
	return fmt.Sprintf(`reagent configuration:
  Model:
    API Key: %s
    Base URL: %s
    Model: %s
    Temperature: %.1f
    Max Tokens: %d
    Stream: %v
    Timeout Seconds: %d
  Generation:
    Temperature: %.1f
    Max Tokens: %d
  Agent:
    Max Iterations: %d
    Max Duration Seconds: %d
    Stop: %q
  Logging:
    Level: %s
    Max Days: %d
    Console: %v`,
		redactAPIKey(c.Model.APIKey),
		c.Model.BaseURL,
		c.Model.Model,
		c.Model.Temperature,
		c.Model.MaxTokens,
		c.Model.Stream,
		c.Model.TimeoutSeconds,
		c.Generation.Temperature,
		c.Generation.MaxTokens,
		c.Agent.MaxIterations,
		c.Agent.MaxDurationSeconds,
		strings.Join(c.Agent.Stop, ", "),
		c.Logging.Level,
		c.Logging.MaxDays,
		c.Logging.Console,
	)
}

func redactAPIKey(value string) string {
	if value == "" {
		return "(not configured)"
	}
	if len(value) > 8 {
		return value[:8] + "..." // Only show first 8 chars
	}
	return "***"
}
