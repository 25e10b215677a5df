// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for robo.
//
// Configuration file locations (in order of precedence):
//   - ~/.robo/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"github.com/jeranaias/robo-tui/internal/gemini"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/util"
)

// Location modes.
const (
	LocationAuto   = "auto"
	LocationStatic = "static"
	LocationOff    = "off"
)

// Export formats accepted in [export].
var exportFormats = []string{"markdown", "html", "json", "yaml"}

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete robo configuration.
type Config struct {
	Gemini   GeminiConfig   `toml:"gemini" json:"gemini"`
	Location LocationConfig `toml:"location" json:"location"`
	Server   ServerConfig   `toml:"server" json:"server"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Log      LogConfig      `toml:"log" json:"log"`
	Export   ExportConfig   `toml:"export" json:"export"`
}

// GeminiConfig configures the model API.
type GeminiConfig struct {
	APIKey  string   `toml:"api_key" json:"api_key"`
	Model   string   `toml:"model" json:"model"`
	BaseURL string   `toml:"base_url" json:"base_url"`
	Timeout Duration `toml:"timeout" json:"timeout"`
}

// LocationConfig configures how the device location is obtained.
type LocationConfig struct {
	Mode      string  `toml:"mode" json:"mode"` // auto, static or off
	Latitude  float64 `toml:"latitude" json:"latitude"`
	Longitude float64 `toml:"longitude" json:"longitude"`
	LookupURL string  `toml:"lookup_url" json:"lookup_url"`
}

// ServerConfig configures the browser front-end.
type ServerConfig struct {
	Addr           string   `toml:"addr" json:"addr"`
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	AltScreen  bool   `toml:"alt_screen" json:"alt_screen"`
	Hyperlinks bool   `toml:"hyperlinks" json:"hyperlinks"`
	Greeting   string `toml:"greeting" json:"greeting"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// ExportConfig configures conversation export.
type ExportConfig struct {
	Dir    string `toml:"dir" json:"dir"`
	Format string `toml:"format" json:"format"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:   gemini.DefaultModel,
			BaseURL: gemini.DefaultBaseURL,
		},
		Location: LocationConfig{
			Mode:      LocationAuto,
			LookupURL: geo.DefaultLookupURL,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		UI: UIConfig{
			AltScreen:  true,
			Hyperlinks: true,
			Greeting:   model.Greeting,
		},
		Log: LogConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Format: "markdown",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the robo configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".robo"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions restricts config files to the owner, since they
// may hold an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.robo/config.toml if present, applies environment overrides,
// fills defaults and validates the result.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load for an explicit file. A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config: %w", err)
		}
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %v\n", path, undecoded)
	}
	return nil
}

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# robo configuration file")
	fmt.Fprintln(&buf, "# Generated by robo - edit with care")
	fmt.Fprintln(&buf, "#")
	fmt.Fprintln(&buf, "# The API key may also come from GEMINI_API_KEY or API_KEY.")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration. All problems are reported together.
// A missing API key is not a validation error; it surfaces on first send.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(field, msg string) {
		result = multierror.Append(result, ValidationError{Field: field, Message: msg})
	}

	if strings.TrimSpace(c.Gemini.Model) == "" {
		add("gemini.model", "must not be empty")
	}
	if u, err := url.Parse(c.Gemini.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("gemini.base_url", fmt.Sprintf("invalid URL %q", c.Gemini.BaseURL))
	}
	if c.Gemini.Timeout.Duration < 0 {
		add("gemini.timeout", "must not be negative")
	}

	switch c.Location.Mode {
	case LocationAuto, LocationOff:
	case LocationStatic:
		coords := geo.Coordinates{Latitude: c.Location.Latitude, Longitude: c.Location.Longitude}
		if err := coords.Validate(); err != nil {
			add("location", err.Error())
		}
	default:
		add("location.mode", fmt.Sprintf("must be one of auto, static, off (got %q)", c.Location.Mode))
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		add("server.addr", "must not be empty")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", fmt.Sprintf("must be one of debug, info, warn, error (got %q)", c.Log.Level))
	}

	if !containsString(exportFormats, c.Export.Format) {
		add("export.format", fmt.Sprintf("must be one of %s (got %q)", strings.Join(exportFormats, ", "), c.Export.Format))
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = func(errs []error) string {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return strings.Join(msgs, "; ")
	}
	return result.ErrorOrNil()
}

// SetDefaults fills empty fields with built-in values.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Gemini.Model == "" {
		c.Gemini.Model = def.Gemini.Model
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = def.Gemini.BaseURL
	}
	if c.Location.Mode == "" {
		c.Location.Mode = def.Location.Mode
	}
	c.Location.Mode = strings.ToLower(c.Location.Mode)
	if c.Location.LookupURL == "" {
		c.Location.LookupURL = def.Location.LookupURL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.UI.Greeting == "" {
		c.UI.Greeting = def.UI.Greeting
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Export.Format == "" {
		c.Export.Format = def.Export.Format
	}
	if c.Export.Dir == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Export.Dir = filepath.Join(dir, "exports")
		}
	}
}

// Locator returns the locator selected by the location mode.
func (c *Config) Locator() geo.Locator {
	switch c.Location.Mode {
	case LocationStatic:
		return geo.Static{Latitude: c.Location.Latitude, Longitude: c.Location.Longitude}
	case LocationOff:
		return geo.Disabled{}
	default:
		return geo.NewIPLookup(c.Location.LookupURL)
	}
}

// NewClient builds a Gemini client from the [gemini] section.
func (c *Config) NewClient() *gemini.Client {
	return gemini.NewClient(c.Gemini.APIKey).
		WithBaseURL(c.Gemini.BaseURL).
		WithTimeout(c.Gemini.Timeout.Duration)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Server.AllowedOrigins != nil {
		clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	}
	return &clone
}

// String returns the configuration as JSON with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Gemini.APIKey != "" {
		safe.Gemini.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
