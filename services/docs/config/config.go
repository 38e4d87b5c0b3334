// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the docnsrt run configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileNames are the configuration file names searched for, in order.
var FileNames = []string{".docnsrt.yaml", ".docnsrt.yml", "docnsrt.yaml"}

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is one run's configuration.
//
// Description:
//
//	Loaded from built-in defaults overlaid with the project file, then
//	with explicitly set CLI flags. Paths are resolved against the
//	directory of the file they came from.
type Config struct {
	ProjectDir      string   `yaml:"project_dir"`
	Files           []string `yaml:"files" validate:"min=1,dive,required"`
	IgnoreFiles     []string `yaml:"ignore_files" validate:"dive,required"`
	Functions       []string `yaml:"functions" validate:"min=1,dive,required"`
	IgnoreFunctions []string `yaml:"ignore_functions" validate:"dive,required"`

	Language string `yaml:"language" validate:"required,oneof=python csharp"`
	Style    string `yaml:"style" validate:"omitempty,oneof=basic pep numpy xml doxygen"`

	// ForceAll accepts every edit without review.
	ForceAll bool `yaml:"force_all"`

	// SkipExisting leaves documented functions alone.
	SkipExisting bool `yaml:"skip_existing"`

	// Check reports undocumented functions and writes nothing.
	Check bool `yaml:"check"`
	Write bool `yaml:"write"`

	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	ReviewOrder string `yaml:"review_order" validate:"omitempty,oneof=forward reverse"`

	// AttachAcrossBlankLines lets a leading comment separated from the
	// signature by blank lines count as its documentation.
	AttachAcrossBlankLines bool `yaml:"attach_across_blank_lines"`

	PromptMode  string `yaml:"prompt_mode" validate:"omitempty,oneof=auto tui form line"`
	Editor      string `yaml:"editor"`
	MaxFileSize int64  `yaml:"max_file_size" validate:"gte=0"`

	Generator GeneratorConfig `yaml:"generator"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Vars are substituted into string values written as ${vars.NAME}.
	Vars map[string]string `yaml:"vars"`

	// Source is the file the configuration was loaded from, empty for
	// defaults only.
	Source string `yaml:"-"`
}

// GeneratorConfig selects the content generator.
type GeneratorConfig struct {
	Kind              string   `yaml:"kind" validate:"omitempty,oneof=placeholder llm"`
	Provider          string   `yaml:"provider" validate:"omitempty,oneof=openai ollama"`
	Model             string   `yaml:"model"`
	BaseURL           string   `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv         string   `yaml:"api_key_env"`
	Temperature       *float32 `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens         *int     `yaml:"max_tokens" validate:"omitempty,gt=0"`
	Concurrency       int      `yaml:"concurrency" validate:"gte=1,lte=64"`
	RequestsPerMinute int      `yaml:"requests_per_minute" validate:"gte=0"`
	CacheDir          string   `yaml:"cache_dir"`
	PromptFile        string   `yaml:"prompt_file"`
	NoSummary         bool     `yaml:"no_summary"`
}

// TelemetryConfig selects trace and metric exporters.
type TelemetryConfig struct {
	TraceExporter   string `yaml:"trace_exporter" validate:"omitempty,oneof=none stdout otlp"`
	MetricExporter  string `yaml:"metric_exporter" validate:"omitempty,oneof=none stdout prometheus"`
	OTLPEndpoint    string `yaml:"otlp_endpoint"`
	OTLPInsecure    bool   `yaml:"otlp_insecure"`
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// Default returns the built-in configuration. Language is unset.
func Default() (*Config, error) {
	var cfg Config
	if err := decode(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("decode built-in defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads path over the defaults. An empty path returns the defaults
// with ProjectDir set to the working directory.
//
// Outputs:
//   - *Config: Normalised but not validated; call Validate after flags
//     are merged.
//   - error: Read, YAML, !ENV or ${vars} resolution failures.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		cfg.Source = abs
		baseDir = filepath.Dir(abs)
	}

	cfg.normalise(baseDir)
	return cfg, nil
}

// Discover returns the first configuration file found in dir or one of
// its parents, or "" when there is none.
func Discover(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// normalise lowercases selectors and resolves relative paths against
// baseDir.
func (c *Config) normalise(baseDir string) {
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	c.Style = strings.ToLower(strings.TrimSpace(c.Style))
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.ReviewOrder = strings.ToLower(c.ReviewOrder)
	c.PromptMode = strings.ToLower(c.PromptMode)
	c.Generator.Kind = strings.ToLower(c.Generator.Kind)
	c.Generator.Provider = strings.ToLower(c.Generator.Provider)

	c.ProjectDir = resolve(baseDir, c.ProjectDir)
	if c.ProjectDir == "" {
		c.ProjectDir = baseDir
	}
	c.Generator.CacheDir = resolve(baseDir, c.Generator.CacheDir)
	c.Generator.PromptFile = resolve(baseDir, c.Generator.PromptFile)
	c.Telemetry.MetricsTextfile = resolve(baseDir, c.Telemetry.MetricsTextfile)
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
