package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config structure
type Config struct {
	LLMProvider       string `json:"llmProvider"`       // "OpenAI" or "OpenAI-Compatible"
	APIKey            string `json:"apiKey"`            // System-level API key (session keys override it)
	BaseURL           string `json:"baseUrl"`           // Optional endpoint override
	ModelName         string `json:"modelName"`         // e.g. "gpt-4-turbo-preview"
	MaxTokens         int    `json:"maxTokens"`         // Completion token cap
	DataCacheDir      string `json:"dataCacheDir"`      // Root of per-session dataset storage
	MaxPreviewRows    int    `json:"maxPreviewRows"`    // Row cap for previews and normalized tables
	SandboxTimeoutSec int    `json:"sandboxTimeoutSec"` // Wall-clock limit for generated code
	DetailedLog       bool   `json:"detailedLog"`
}

// Default returns a Config with the built-in defaults applied.
func Default() Config {
	return Config{
		LLMProvider:       "OpenAI",
		ModelName:         "gpt-4-turbo-preview",
		MaxTokens:         4096,
		MaxPreviewRows:    20,
		SandboxTimeoutSec: 30,
	}
}

// Load reads the config file from dir, falling back to defaults when the
// file does not exist yet.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, "config.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.DataCacheDir = filepath.Join(dir, "sessions")
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	if cfg.DataCacheDir == "" {
		cfg.DataCacheDir = filepath.Join(dir, "sessions")
	}
	if cfg.MaxPreviewRows <= 0 {
		cfg.MaxPreviewRows = 20
	}
	if cfg.SandboxTimeoutSec <= 0 {
		cfg.SandboxTimeoutSec = 30
	}
	return cfg, nil
}

// Save writes the config file to dir, creating the directory if needed.
func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %v", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}
	return nil
}
