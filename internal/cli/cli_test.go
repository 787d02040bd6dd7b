package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/me/concdemo/internal/config"
	"github.com/me/concdemo/internal/demo"
	"github.com/me/concdemo/internal/fetcher"
	"github.com/me/concdemo/internal/mainloop"
	"github.com/me/concdemo/internal/server"
	"github.com/me/concdemo/pkg/model"
)

var imageNames = []string{"eiffel.jpg", "venice.jpg", "ireland.jpg", "stockholm.jpg"}

// writeImages creates small image files and returns their directory.
func writeImages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range imageNames {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("\xff\xd8\xff\xe0 jpeg "+name), 0o644); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	return dir
}

// startTestServer starts a control server around f and returns the URL.
func startTestServer(t *testing.T, f fetcher.Fetcher) string {
	t.Helper()
	srvLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))

	loop := mainloop.New(srvLogger, 0)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	images := []string{"/img/1.jpg", "/img/2.jpg", "/img/3.jpg", "/img/4.jpg"}
	ctrl := demo.NewController(demo.Config{Images: images}, f, loop, srvLogger)
	srv := server.New(config.DefaultServerConfig(), ctrl, srvLogger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		for _, b := range ctrl.Batches() {
			b.Cancel()
		}
		ts.Close()
		cancel()
		<-loop.Done()
	})
	return ts.URL
}

func quickFetch(ctx context.Context, src string) (*fetcher.Image, error) {
	return &fetcher.Image{Source: src, Data: []byte("jpeg"), ContentType: "image/jpeg", FetchedAt: time.Now()}, nil
}

func blockingFetch(ctx context.Context, src string) (*fetcher.Image, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := root.Execute()
	return buf.String(), err
}

func TestModesCommand(t *testing.T) {
	output, err := runCLI(t, "modes")
	if err != nil {
		t.Fatalf("modes error: %v", err)
	}
	for _, m := range demo.Modes {
		if !strings.Contains(output, string(m)) {
			t.Errorf("expected %s in output, got: %s", m, output)
		}
	}
}

func TestRunCommand_Serial(t *testing.T) {
	dir := writeImages(t)
	args := []string{"run", "--mode", "serial", "-q"}
	for _, name := range imageNames {
		args = append(args, "--image", filepath.Join(dir, name))
	}

	output, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("run error: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "State: COMPLETED") {
		t.Errorf("expected COMPLETED batch in output, got: %s", output)
	}
	for i, name := range imageNames {
		want := filepath.Join(dir, name)
		if !strings.Contains(output, want) {
			t.Errorf("expected slot %d source %s in output, got: %s", i+1, want, output)
		}
	}
	if strings.Contains(output, "->") {
		t.Errorf("quiet run should not print progress, got: %s", output)
	}
}

func TestRunCommand_OperationsWithConfig(t *testing.T) {
	dir := writeImages(t)
	cfgPath := filepath.Join(t.TempDir(), "concdemo.yaml")
	cfgYAML := "base_dir: " + dir + "\nimages:\n"
	for _, name := range imageNames {
		cfgYAML += "  - " + name + "\n"
	}
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := runCLI(t, "--config", cfgPath, "run", "--mode", "operations", "--slider", "0.5")
	if err != nil {
		t.Fatalf("run error: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "operation 1") || !strings.Contains(output, "RUNNING -> COMPLETED") {
		t.Errorf("expected progress lines in output, got: %s", output)
	}
	if !strings.Contains(output, "Slider: 50.0") {
		t.Errorf("expected slider label in output, got: %s", output)
	}
	if strings.Contains(output, "(empty)") {
		t.Errorf("all slots should be filled, got: %s", output)
	}
}

func TestRunCommand_FailedFetch(t *testing.T) {
	dir := writeImages(t)
	output, err := runCLI(t, "run", "--mode", "concurrent", "-q",
		"--base-dir", dir,
		"--image", imageNames[0],
		"--image", "missing.jpg",
	)
	if err == nil {
		t.Fatalf("expected error for missing image, output: %s", output)
	}
	if !strings.Contains(output, "State: FAILED") {
		t.Errorf("expected FAILED batch in output, got: %s", output)
	}
	if !strings.Contains(output, "[2] (empty)") {
		t.Errorf("expected empty second slot, got: %s", output)
	}
}

func TestRunCommand_BadMode(t *testing.T) {
	if _, err := runCLI(t, "run", "--mode", "parallel"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestStartAndStatusCommands(t *testing.T) {
	url := startTestServer(t, fetcher.Func(quickFetch))

	output, err := runCLI(t, "--server", url, "start", "serial", "--wait", "--interval", "10ms")
	if err != nil {
		t.Fatalf("start error: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "Batch started: batch_") {
		t.Errorf("expected 'Batch started: batch_' in output, got: %s", output)
	}
	if !strings.Contains(output, "State: COMPLETED") {
		t.Errorf("expected COMPLETED in output, got: %s", output)
	}

	output, err = runCLI(t, "--server", url, "status")
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if !strings.Contains(output, "serial") || !strings.Contains(output, "COMPLETED") {
		t.Errorf("expected batch row in output, got: %s", output)
	}

	output, err = runCLI(t, "--server", url, "gallery")
	if err != nil {
		t.Fatalf("gallery error: %v", err)
	}
	if !strings.Contains(output, "[1] /img/1.jpg") {
		t.Errorf("expected filled slot in output, got: %s", output)
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	url := startTestServer(t, fetcher.Func(quickFetch))
	if _, err := runCLI(t, "--server", url, "status", "batch_missing"); err == nil {
		t.Fatal("expected error for unknown batch")
	}
}

func TestCancelCommand(t *testing.T) {
	url := startTestServer(t, fetcher.Func(blockingFetch))

	if _, err := runCLI(t, "--server", url, "cancel"); err == nil {
		t.Fatal("expected error when no batch was started")
	}

	if _, err := runCLI(t, "--server", url, "start", "serial"); err != nil {
		t.Fatalf("start error: %v", err)
	}
	output, err := runCLI(t, "--server", url, "cancel")
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if !strings.Contains(output, "Tasks cancelled: 3") {
		t.Errorf("expected 3 cancelled tasks in output, got: %s", output)
	}
}

func TestSliderCommand(t *testing.T) {
	url := startTestServer(t, fetcher.Func(quickFetch))

	output, err := runCLI(t, "--server", url, "slider", "0.25")
	if err != nil {
		t.Fatalf("slider error: %v", err)
	}
	if !strings.Contains(output, "Slider: 25.0") {
		t.Errorf("expected label in output, got: %s", output)
	}

	if _, err := runCLI(t, "--server", url, "slider", "abc"); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if _, err := runCLI(t, "--server", url, "slider", "3"); err == nil {
		t.Error("expected error for out-of-range value")
	}
}

func TestServeCommand_ListenError(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		_, err := runCLI(t, "serve", "--addr", "127.0.0.1:-1")
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "server failed") {
			t.Errorf("serve error = %v, want listen failure", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after a listen error")
	}
}

func TestServeCommand_BadConfig(t *testing.T) {
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "serve")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLogSettings(t *testing.T) {
	oldLevel, oldFormat := flagLogLevel, flagLogFormat
	defer func() { flagLogLevel, flagLogFormat = oldLevel, oldFormat }()
	flagLogLevel, flagLogFormat = "warn", "text"

	cfg := config.ServerConfig{LogLevel: "debug", LogFormat: "json"}
	tests := []struct {
		name       string
		cfg        config.ServerConfig
		levelSet   bool
		formatSet  bool
		wantLevel  slog.Level
		wantFormat string
	}{
		{"config wins over defaults", cfg, false, false, slog.LevelDebug, "json"},
		{"level flag wins", cfg, true, false, slog.LevelWarn, "json"},
		{"format flag wins", cfg, false, true, slog.LevelDebug, "text"},
		{"empty config keeps flags", config.ServerConfig{}, false, false, slog.LevelWarn, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, format := logSettings(tt.cfg, tt.levelSet, tt.formatSet)
			if level != tt.wantLevel {
				t.Errorf("level = %v, want %v", level, tt.wantLevel)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %q, want %q", format, tt.wantFormat)
			}
		})
	}
}

func TestRunCommand_ConfigLogLevel(t *testing.T) {
	dir := writeImages(t)
	cfgPath := filepath.Join(t.TempDir(), "concdemo.yaml")
	cfgYAML := "base_dir: " + dir + "\nimages:\n  - " + imageNames[0] + "\nserver:\n  log_level: warn\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"--config", cfgPath, "run", "--mode", "serial", "-q"})
	if err := root.Execute(); err != nil {
		t.Fatalf("run error: %v\noutput: %s", err, buf.String())
	}

	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("info logging enabled, want config log_level warn to apply")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Error("warn logging disabled")
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	url := startTestServer(t, fetcher.Func(quickFetch))
	c := NewClient(url+"/", nil)
	ctx := context.Background()

	var modes []struct {
		Name string `json:"name"`
	}
	if _, err := c.Get(ctx, "/api/v1/modes", &modes); err != nil {
		t.Fatalf("Get modes: %v", err)
	}
	if len(modes) != len(demo.Modes) {
		t.Errorf("modes = %d, want %d", len(modes), len(demo.Modes))
	}

	_, err := c.Put(ctx, "/api/v1/batches/batch_missing/cancel", nil, nil)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrNotFound {
		t.Errorf("code = %s, want %s", apiErr.Code, model.ErrNotFound)
	}
}
