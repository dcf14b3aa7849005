package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLMProvider != "OpenAI" || cfg.MaxTokens != 4096 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.SandboxTimeoutSec != 30 {
		t.Fatalf("sandbox timeout default = %d, want 30", cfg.SandboxTimeoutSec)
	}
	if cfg.DataCacheDir != filepath.Join(dir, "sessions") {
		t.Fatalf("data cache dir = %q", cfg.DataCacheDir)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Default()
	want.APIKey = "sk-test"
	want.ModelName = "gpt-4o"
	want.SandboxTimeoutSec = 5
	want.DataCacheDir = filepath.Join(dir, "cache")

	if err := Save(dir, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}
