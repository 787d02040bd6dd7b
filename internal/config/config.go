package config

import (
	"fmt"
	"os"
	"time"

	"github.com/me/concdemo/pkg/model"
	"gopkg.in/yaml.v3"
)

// DefaultImages are the four pictures the demo gallery fetches.
var DefaultImages = []string{
	"http://www.planetware.com/photos-large/F/france-paris-eiffel-tower.jpg",
	"http://adriatic-lines.com/wp-content/uploads/2015/04/canal-of-Venice.jpg",
	"http://algoos.com/wp-content/uploads/2015/08/ireland-02.jpg",
	"http://bdo.se/wp-content/uploads/2014/01/Stockholm1.jpg",
}

// DemoConfig holds configuration for a demo run or the control server.
type DemoConfig struct {
	Images        []string `yaml:"images"`
	MaxConcurrent int      `yaml:"max_concurrent"` // Queue limit for the blocks and operations modes; 0 = unbounded
	FetchTimeout  Duration `yaml:"fetch_timeout"`
	UserAgent     string   `yaml:"user_agent"`
	BaseDir       string   `yaml:"base_dir"` // Root for relative and file:// image sources
	// Priorities holds one admission priority per image for the operations
	// mode (very-low, low, normal, high, very-high). Missing entries are normal.
	Priorities []string `yaml:"priorities"`

	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds configuration for the control server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel  string `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `yaml:"log_format"` // Log format: text, json
	AssetsDir string `yaml:"assets_dir"` // Directory served under /images/ (empty disables)
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultDemoConfig returns sensible defaults.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		Images:        append([]string(nil), DefaultImages...),
		MaxConcurrent: 0,
		FetchTimeout:  Duration(30 * time.Second),
		UserAgent:     "concdemo/0.1",
		Server:        DefaultServerConfig(),
	}
}

// LoadDemoConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value.
func LoadDemoConfig(path string) (DemoConfig, error) {
	cfg := DefaultDemoConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c DemoConfig) Validate() error {
	if len(c.Images) == 0 {
		return fmt.Errorf("images: at least one source is required")
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent: must be >= 0, got %d", c.MaxConcurrent)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout: must be >= 0")
	}
	if len(c.Priorities) > len(c.Images) {
		return fmt.Errorf("priorities: %d entries for %d images", len(c.Priorities), len(c.Images))
	}
	if _, err := c.TaskPriorities(); err != nil {
		return err
	}
	return nil
}

// TaskPriorities parses Priorities into one value per image.
func (c DemoConfig) TaskPriorities() ([]model.Priority, error) {
	out := make([]model.Priority, len(c.Images))
	for i := range out {
		out[i] = model.PriorityNormal
	}
	for i, name := range c.Priorities {
		if i >= len(out) {
			break
		}
		p, err := model.ParsePriority(name)
		if err != nil {
			return nil, fmt.Errorf("priorities[%d]: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}
