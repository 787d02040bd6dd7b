package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/me/concdemo/pkg/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "concdemo.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultDemoConfig(t *testing.T) {
	cfg := DefaultDemoConfig()
	if len(cfg.Images) != 4 {
		t.Errorf("Images = %d, want 4", len(cfg.Images))
	}
	if cfg.FetchTimeout.Std() != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.FetchTimeout.Std())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	cfg.Images[0] = "changed"
	if DefaultImages[0] == "changed" {
		t.Error("DefaultDemoConfig should copy DefaultImages")
	}
}

func TestLoadDemoConfig(t *testing.T) {
	path := writeConfig(t, `
images:
  - /images/a.jpg
  - /images/b.jpg
max_concurrent: 2
fetch_timeout: 5s
server:
  addr: ":9090"
  assets_dir: ./assets
`)
	cfg, err := LoadDemoConfig(path)
	if err != nil {
		t.Fatalf("LoadDemoConfig: %v", err)
	}
	if len(cfg.Images) != 2 || cfg.Images[1] != "/images/b.jpg" {
		t.Errorf("Images = %v", cfg.Images)
	}
	if cfg.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %d, want 2", cfg.MaxConcurrent)
	}
	if cfg.FetchTimeout.Std() != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.FetchTimeout.Std())
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	// Untouched keys keep defaults.
	if cfg.UserAgent != "concdemo/0.1" {
		t.Errorf("UserAgent = %q, want default", cfg.UserAgent)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("Server.LogLevel = %q, want default", cfg.Server.LogLevel)
	}
}

func TestLoadDemoConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "images: [", "parse config"},
		{"bad duration", "fetch_timeout: soon", "duration"},
		{"negative limit", "max_concurrent: -1", "max_concurrent"},
		{"no images", "images: []", "images"},
		{"unknown priority", "priorities: [urgent]", "priorities[0]"},
		{"too many priorities", "images: [a.jpg]\npriorities: [high, low]", "priorities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDemoConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestTaskPriorities(t *testing.T) {
	cfg, err := LoadDemoConfig(writeConfig(t, "priorities: [low, \"\", very-high]"))
	if err != nil {
		t.Fatalf("LoadDemoConfig: %v", err)
	}
	got, err := cfg.TaskPriorities()
	if err != nil {
		t.Fatalf("TaskPriorities: %v", err)
	}
	want := []model.Priority{model.PriorityLow, model.PriorityNormal, model.PriorityVeryHigh, model.PriorityNormal}
	if len(got) != len(want) {
		t.Fatalf("priorities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("priorities[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLoadDemoConfig_Missing(t *testing.T) {
	_, err := LoadDemoConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
