package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xasscan/pkg/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xasscan.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Limit != 100 {
		t.Errorf("expected limit=100, got %d", cfg.Limit)
	}
	if cfg.Timeout != 10 {
		t.Errorf("expected timeout=10, got %d", cfg.Timeout)
	}
	if cfg.Delay != 200*time.Millisecond {
		t.Errorf("expected delay=200ms, got %s", cfg.Delay)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
url: https://app.example.com
cookie: abc123
microflows: true
limit: 25
proxy: http://127.0.0.1:8080
delay: 1s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.URL != "https://app.example.com" {
		t.Errorf("url = %q", cfg.URL)
	}
	if cfg.Cookie != "abc123" || !cfg.Microflows || cfg.Limit != 25 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Proxy != "http://127.0.0.1:8080" {
		t.Errorf("proxy = %q", cfg.Proxy)
	}
	if cfg.Delay != time.Second {
		t.Errorf("delay = %s, want 1s", cfg.Delay)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("unset timeout should keep its default, got %d", cfg.Timeout)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("empty file should yield defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	_, err := Load(writeConfig(t, "urll: https://typo.example.com\n"))
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("expected unknown-field error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.URL = "https://app.example.com"
	if err := Validate(valid); err != nil {
		t.Errorf("Validate(valid) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(cfg *core.Config)
	}{
		{"no url", func(cfg *core.Config) { cfg.URL = "" }},
		{"zero limit", func(cfg *core.Config) { cfg.Limit = 0 }},
		{"zero timeout", func(cfg *core.Config) { cfg.Timeout = 0 }},
		{"negative delay", func(cfg *core.Config) { cfg.Delay = -time.Second }},
	}
	for _, tt := range tests {
		cfg := valid
		tt.mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 5, 33, 0, time.UTC)
	if got := DefaultOutput(now); got != "SecurityScan_Report_2026-10-19_09-05.xlsx" {
		t.Errorf("DefaultOutput = %q", got)
	}
}
