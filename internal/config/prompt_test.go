package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPromptConfig(t *testing.T) {
	cfg := DefaultPromptConfig()

	for _, placeholder := range []string{"{tools}", "{tool_names}", "{input}", "{agent_scratchpad}"} {
		if !strings.Contains(cfg.GetReActTemplate(), placeholder) {
			t.Errorf("Default template should contain %s", placeholder)
		}
	}
	if !strings.Contains(cfg.GetGenerateTemplate(), "{topic}") {
		t.Error("Default generate template should contain {topic}")
	}
}

func TestLoadPromptConfig_Missing(t *testing.T) {
	SetConfigDir(t.TempDir())

	cfg, err := LoadPromptConfig()
	if err != nil {
		t.Fatalf("LoadPromptConfig failed: %v", err)
	}
	if cfg.GetReActTemplate() != DefaultReActTemplate {
		t.Error("Missing prompt file should yield the default template")
	}
}

func TestLoadPromptConfig_Override(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDir(tmpDir)

	content := "react: |\n  Tools: {tools}\n  Q: {input}\n  {agent_scratchpad}\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "prompt.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPromptConfig()
	if err != nil {
		t.Fatalf("LoadPromptConfig failed: %v", err)
	}
	if !strings.HasPrefix(cfg.GetReActTemplate(), "Tools: {tools}") {
		t.Errorf("Expected overridden template, got %q", cfg.GetReActTemplate())
	}
	if cfg.GetGenerateTemplate() != DefaultGenerateTemplate {
		t.Error("Unset generate template should keep the default")
	}
}

func TestLoadPromptConfig_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDir(tmpDir)

	if err := os.WriteFile(filepath.Join(tmpDir, "prompt.yaml"), []byte("react: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPromptConfig(); err == nil {
		t.Error("Expected parse error for malformed prompt.yaml")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("REAGENT_TEST_VALUE=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REAGENT_TEST_VALUE", "")
	os.Unsetenv("REAGENT_TEST_VALUE")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("REAGENT_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("Expected value from .env, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Missing .env should be ignored, got %v", err)
	}
}

func TestSecrets_NilSafe(t *testing.T) {
	var s *Secrets
	if s.Get("X") != "" {
		t.Error("nil Secrets Get should return empty string")
	}
	if s.GetOrDefault("X", "d") != "d" {
		t.Error("nil Secrets GetOrDefault should return default")
	}
	if s.Has("X") {
		t.Error("nil Secrets Has should return false")
	}
}
