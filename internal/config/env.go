// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// envOverlay lists the environment variables that override the file.
// Unset variables leave the file value alone.
type envOverlay struct {
	Model        string `env:"ROBO_MODEL"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	APIKey       string `env:"API_KEY"`
	BaseURL      string `env:"ROBO_BASE_URL"`
	Timeout      string `env:"ROBO_TIMEOUT"`

	LocationMode string `env:"ROBO_LOCATION_MODE"`
	Latitude     string `env:"ROBO_LATITUDE"`
	Longitude    string `env:"ROBO_LONGITUDE"`

	Addr           string   `env:"ROBO_ADDR"`
	AllowedOrigins []string `env:"ROBO_ALLOWED_ORIGINS" envSeparator:","`

	LogLevel  string `env:"ROBO_LOG_LEVEL"`
	LogFile   string `env:"ROBO_LOG_FILE"`
	ExportDir string `env:"ROBO_EXPORT_DIR"`
}

// ApplyEnvOverrides applies environment variables on top of the file values.
func (c *Config) ApplyEnvOverrides() error {
	return c.applyEnv(env.Options{})
}

func (c *Config) applyEnv(opts env.Options) error {
	var o envOverlay
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return err
	}

	setString(&c.Gemini.Model, o.Model)
	// GEMINI_API_KEY wins over the generic API_KEY.
	setString(&c.Gemini.APIKey, o.APIKey)
	setString(&c.Gemini.APIKey, o.GeminiAPIKey)
	setString(&c.Gemini.BaseURL, o.BaseURL)
	if o.Timeout != "" {
		d, err := time.ParseDuration(o.Timeout)
		if err != nil {
			return fmt.Errorf("ROBO_TIMEOUT: %w", err)
		}
		c.Gemini.Timeout = Duration{d}
	}

	setString(&c.Location.Mode, strings.ToLower(o.LocationMode))
	if err := setFloat(&c.Location.Latitude, "ROBO_LATITUDE", o.Latitude); err != nil {
		return err
	}
	if err := setFloat(&c.Location.Longitude, "ROBO_LONGITUDE", o.Longitude); err != nil {
		return err
	}
	// Coordinates alone imply a fixed location.
	if (o.Latitude != "" || o.Longitude != "") && o.LocationMode == "" {
		c.Location.Mode = LocationStatic
	}

	setString(&c.Server.Addr, o.Addr)
	if len(o.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = o.AllowedOrigins
	}

	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.File, o.LogFile)
	setString(&c.Export.Dir, o.ExportDir)
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, name, v string) error {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = f
	return nil
}
