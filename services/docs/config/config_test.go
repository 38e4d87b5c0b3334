// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, ".docnsrt.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"**/*"}, cfg.Files)
	assert.Equal(t, []string{"*"}, cfg.Functions)
	assert.Equal(t, "basic", cfg.Style)
	assert.True(t, cfg.Write)
	assert.Equal(t, "placeholder", cfg.Generator.Kind)
	assert.Equal(t, 4, cfg.Generator.Concurrency)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.Empty(t, cfg.Language)
}

func TestLoad_OverlaysDefaultsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, `
project_dir: src
language: Python
style: numpy
ignore_functions: ["_*"]
generator:
  kind: llm
  provider: ollama
  cache_dir: .cache/docnsrt
  temperature: 0.2
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), cfg.ProjectDir)
	assert.Equal(t, "python", cfg.Language)
	assert.Equal(t, "numpy", cfg.Style)
	assert.Equal(t, []string{"_*"}, cfg.IgnoreFunctions)
	assert.Equal(t, []string{"**/*"}, cfg.Files, "defaults kept")
	assert.Equal(t, filepath.Join(dir, ".cache", "docnsrt"), cfg.Generator.CacheDir)
	require.NotNil(t, cfg.Generator.Temperature)
	assert.InDelta(t, 0.2, *cfg.Generator.Temperature, 1e-6)
	assert.Equal(t, 4, cfg.Generator.Concurrency)
	assert.Equal(t, p, cfg.Source)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EmptyPathUsesWorkingDirectory(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, cfg.ProjectDir)
	assert.Empty(t, cfg.Source)
}

func TestLoad_EnvTag(t *testing.T) {
	t.Setenv("DOCNSRT_TEST_LANG", "csharp")
	t.Setenv("DOCNSRT_TEST_FORCE", "true")

	p := writeConfig(t, t.TempDir(), `
language: !ENV DOCNSRT_TEST_LANG
force_all: !ENV DOCNSRT_TEST_FORCE
style: !ENV DOCNSRT_TEST_UNSET_STYLE | doxygen
generator:
  concurrency: !ENV DOCNSRT_TEST_UNSET_CONC | 2
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "csharp", cfg.Language)
	assert.True(t, cfg.ForceAll)
	assert.Equal(t, "doxygen", cfg.Style)
	assert.Equal(t, 2, cfg.Generator.Concurrency)
}

func TestLoad_EnvTagWithoutDefaultFails(t *testing.T) {
	p := writeConfig(t, t.TempDir(), "language: !ENV DOCNSRT_TEST_DEFINITELY_UNSET\n")

	_, err := Load(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnvNotSet))
	assert.Contains(t, err.Error(), "DOCNSRT_TEST_DEFINITELY_UNSET")
}

func TestLoad_Vars(t *testing.T) {
	t.Setenv("DOCNSRT_TEST_ROOT", "lib")
	p := writeConfig(t, t.TempDir(), `
vars:
  root: !ENV DOCNSRT_TEST_ROOT
  skip: "test_*"
language: python
files:
  - "${vars.root}/**/*.py"
ignore_files: ["${ vars.skip }"]
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/**/*.py"}, cfg.Files)
	assert.Equal(t, []string{"test_*"}, cfg.IgnoreFiles)
	assert.Equal(t, "lib", cfg.Vars["root"])
}

func TestLoad_UnknownVarFails(t *testing.T) {
	p := writeConfig(t, t.TempDir(), "language: python\nfiles: [\"${vars.nope}/*.py\"]\n")

	_, err := Load(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVar))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	p := writeConfig(t, t.TempDir(), "language: [unterminated\n")
	_, err = Load(p)
	assert.Error(t, err)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	p := writeConfig(t, t.TempDir(), "")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.Functions)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := Discover(nested)
	require.NoError(t, err)
	assert.Empty(t, got)

	p := writeConfig(t, root, "language: python\n")
	got, err = Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Default()
		require.NoError(t, err)
		cfg.Language = "python"
		cfg.ProjectDir = t.TempDir()
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing language", func(c *Config) { c.Language = "" }, "Language"},
		{"unknown language", func(c *Config) { c.Language = "cobol" }, "Language"},
		{"style for other language", func(c *Config) { c.Style = "xml" }, "xml"},
		{"no files", func(c *Config) { c.Files = nil }, "Files"},
		{"bad order", func(c *Config) { c.ReviewOrder = "random" }, "ReviewOrder"},
		{"zero concurrency", func(c *Config) { c.Generator.Concurrency = 0 }, "Concurrency"},
		{"llm without provider", func(c *Config) {
			c.Generator.Kind = "llm"
			c.Generator.Provider = ""
		}, "provider is required"},
		{"bad base url", func(c *Config) { c.Generator.BaseURL = "not a url" }, "BaseURL"},
		{"check with force", func(c *Config) {
			c.Check = true
			c.ForceAll = true
		}, "force_all"},
		{"bad exporter", func(c *Config) { c.Telemetry.TraceExporter = "jaeger" }, "TraceExporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
