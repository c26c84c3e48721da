package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultReActTemplate is the instruction template of the reasoning loop.
// {tools} and {tool_names} are bound once; {input} and {agent_scratchpad}
// change on every call.
const DefaultReActTemplate = `Answer the following questions as best you can. You have access to the following tools:

{tools}

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{tool_names}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!

Question: {input}
Thought: {agent_scratchpad}`

// DefaultGenerateTemplate is the request sent by the generate_text tool
const DefaultGenerateTemplate = "write paragraph about {topic}"

// PromptConfig prompt configuration structure
type PromptConfig struct {
	ReAct    string `yaml:"react"`
	Generate string `yaml:"generate"`
}

// DefaultPromptConfig returns default prompt configuration
func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		ReAct:    DefaultReActTemplate,
		Generate: DefaultGenerateTemplate,
	}
}

// PromptConfigPath returns the prompt config file path
func PromptConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prompt.yaml"), nil
}

// LoadPromptConfig loads prompt configuration from file.
// Missing files and empty entries fall back to the defaults.
func LoadPromptConfig() (*PromptConfig, error) {
	configPath, err := PromptConfigPath()
	if err != nil {
		return DefaultPromptConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultPromptConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt config: %w", err)
	}

	cfg := DefaultPromptConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse prompt config: %w", err)
	}

	return cfg, nil
}

// GetReActTemplate returns the loop template
func (p *PromptConfig) GetReActTemplate() string {
	if strings.TrimSpace(p.ReAct) == "" {
		return DefaultReActTemplate
	}
	return p.ReAct
}

// GetGenerateTemplate returns the generate_text request template
func (p *PromptConfig) GetGenerateTemplate() string {
	if strings.TrimSpace(p.Generate) == "" {
		return DefaultGenerateTemplate
	}
	return p.Generate
}
