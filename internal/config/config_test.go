package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.BaseURL != "https://api.openai.com" {
		t.Errorf("Expected BaseURL to be https://api.openai.com, got %s", cfg.Model.BaseURL)
	}

	if cfg.Model.Temperature != 0 {
		t.Errorf("Expected Temperature to be 0, got %f", cfg.Model.Temperature)
	}

	if cfg.Agent.MaxIterations != 15 {
		t.Errorf("Expected MaxIterations to be 15, got %d", cfg.Agent.MaxIterations)
	}

	if len(cfg.Agent.Stop) != 1 || cfg.Agent.Stop[0] != "\nObservation" {
		t.Errorf("Expected stop sequence \\nObservation, got %q", cfg.Agent.Stop)
	}

	if cfg.Generation.Temperature != 0.7 {
		t.Errorf("Expected generation temperature 0.7, got %f", cfg.Generation.Temperature)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty BaseURL",
			mutate:  func(c *Config) { c.Model.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "empty model",
			mutate:  func(c *Config) { c.Model.Model = "" },
			wantErr: true,
		},
		{
			name:    "invalid Temperature",
			mutate:  func(c *Config) { c.Model.Temperature = 3.0 },
			wantErr: true,
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.Model.MaxTokens = 0 },
			wantErr: true,
		},
		{
			name:    "invalid generation temperature",
			mutate:  func(c *Config) { c.Generation.Temperature = -1 },
			wantErr: true,
		},
		{
			name:    "zero max iterations",
			mutate:  func(c *Config) { c.Agent.MaxIterations = 0 },
			wantErr: true,
		},
		{
			name:    "negative max duration",
			mutate:  func(c *Config) { c.Agent.MaxDurationSeconds = -5 },
			wantErr: true,
		},
		{
			name:    "no duration bound",
			mutate:  func(c *Config) { c.Agent.MaxDurationSeconds = 0 },
			wantErr: false,
		},
		{
			name:    "empty stop sequence",
			mutate:  func(c *Config) { c.Agent.Stop = []string{""} },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "reagent-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	configTestDir := filepath.Join(tmpDir, "config")
	SetConfigDir(configTestDir)

	cfg := DefaultConfig()
	cfg.Model.APIKey = "test-api-key"
	cfg.Agent.MaxIterations = 4

	err = Save(cfg)
	if err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	configPath := filepath.Join(configTestDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file not created")
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedCfg.Model.APIKey != cfg.Model.APIKey {
		t.Errorf("API Key mismatch: expected %s, got %s", cfg.Model.APIKey, loadedCfg.Model.APIKey)
	}
	if loadedCfg.Agent.MaxIterations != 4 {
		t.Errorf("MaxIterations mismatch: expected 4, got %d", loadedCfg.Agent.MaxIterations)
	}
	if len(loadedCfg.Agent.Stop) != 1 || loadedCfg.Agent.Stop[0] != DefaultStopSequence {
		t.Errorf("Stop sequence did not survive round trip: %q", loadedCfg.Agent.Stop)
	}
}

func TestLoad_CreatesDefaultFile(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDir(tmpDir)
	t.Setenv(OpenAIAPIKeyEnv, "env-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model.APIKey != "env-key" {
		t.Errorf("Expected API key from environment, got %q", cfg.Model.APIKey)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "config.yaml"))
	if err != nil {
		t.Fatalf("Default config file not written: %v", err)
	}
	if strings.Contains(string(data), "env-key") {
		t.Error("API key from the environment should not be written to the config file")
	}
}

func TestLoad_SecretsFile(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDir(tmpDir)
	t.Setenv(OpenAIAPIKeyEnv, "")

	if err := Save(DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	secrets := "# comment\nOPENAI_API_KEY=secret-from-file\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".secrets"), []byte(secrets), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model.APIKey != "secret-from-file" {
		t.Errorf("Expected API key from secrets, got %q", cfg.Model.APIKey)
	}
}

func TestSaveLoad_StopSequencesRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDir(tmpDir)
	t.Setenv(OpenAIAPIKeyEnv, "env-key")

	// first load writes the defaults, later loads read them back
	for i := 0; i < 2; i++ {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load %d failed: %v", i+1, err)
		}
		if len(cfg.Agent.Stop) != 1 || cfg.Agent.Stop[0] != DefaultStopSequence {
			t.Errorf("Load %d: stop = %q", i+1, cfg.Agent.Stop)
		}
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `stop: ["\nObservation"]`) {
		t.Errorf("Stop sequences should be written double-quoted:\n%s", data)
	}

	cfg := DefaultConfig()
	cfg.Agent.Stop = StopSequences{"\nObservation", "\tEND", `say "hi"`}
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if len(loaded.Agent.Stop) != 3 {
		t.Fatalf("Expected 3 stop sequences, got %q", loaded.Agent.Stop)
	}
	for i, want := range cfg.Agent.Stop {
		if loaded.Agent.Stop[i] != want {
			t.Errorf("stop[%d] = %q, want %q", i, loaded.Agent.Stop[i], want)
		}
	}
}

func TestLoad_UnreadableSecrets(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDir(tmpDir)
	t.Setenv(OpenAIAPIKeyEnv, "")

	if err := Save(DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	// a directory where the secrets file should be cannot be read
	if err := os.Mkdir(filepath.Join(tmpDir, ".secrets"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "failed to load secrets") {
		t.Errorf("Expected secrets error, got %v", err)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDir(tmpDir)

	content := "agent:\n  max_iterations: 0\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected validation error for max_iterations 0")
	}
}

func TestIsAPIKeyConfigured(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.IsAPIKeyConfigured() {
		t.Error("Default config should not have API Key")
	}

	cfg.Model.APIKey = "test-key"
	if !cfg.IsAPIKeyConfigured() {
		t.Error("Should return true after setting API Key")
	}
}

func TestConfigString_RedactsKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.APIKey = "sk-1234567890abcdef"

	out := cfg.String()
	if strings.Contains(out, "sk-1234567890abcdef") {
		t.Error("String() should not expose the full API key")
	}
	if !strings.Contains(out, "sk-12345...") {
		t.Errorf("String() should show the key prefix, got:\n%s", out)
	}
}

func TestRedactAPIKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "(not configured)"},
		{"short", "***"},
		{"1234567890", "12345678..."},
	}
	for _, tt := range tests {
		if got := redactAPIKey(tt.input); got != tt.want {
			t.Errorf("redactAPIKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
