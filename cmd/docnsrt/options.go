// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/AleutianAI/docnsrt/services/docs/config"
)

// runOptions holds raw flag values. Only flags the user actually set are
// copied onto the loaded config.
type runOptions struct {
	configPath string
	projectDir string
	language   string
	style      string

	files           []string
	ignoreFiles     []string
	functions       []string
	ignoreFunctions []string

	attachAcrossBlankLines bool
	logLevel               string

	forceAll     bool
	skipExisting bool
	write        bool
	check        bool
	reviewOrder  string
	promptMode   string
	editor       string

	generator   string
	provider    string
	model       string
	baseURL     string
	concurrency int
	cacheDir    string
	noSummary   bool

	metricsTextfile string
}

// loadConfig finds and loads the config file, then applies flags.
func loadConfig(o *runOptions, changed func(string) bool) (*config.Config, error) {
	path := o.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = config.Discover(wd); err != nil {
			return nil, fmt.Errorf("discover config: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := o.apply(cfg, changed); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies explicitly set flags onto cfg. Relative paths given on
// the command line are resolved against the working directory.
func (o *runOptions) apply(cfg *config.Config, changed func(string) bool) error {
	setString := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool, v bool) {
		if changed(name) {
			*dst = v
		}
	}
	setSlice := func(name string, dst *[]string, v []string) {
		if changed(name) {
			*dst = v
		}
	}

	if changed("project-dir") {
		abs, err := absPath(o.projectDir)
		if err != nil {
			return err
		}
		cfg.ProjectDir = abs
	}
	setString("language", &cfg.Language, o.language)
	setString("style", &cfg.Style, o.style)
	setSlice("files", &cfg.Files, o.files)
	setSlice("ignore-files", &cfg.IgnoreFiles, o.ignoreFiles)
	setSlice("functions", &cfg.Functions, o.functions)
	setSlice("ignore-functions", &cfg.IgnoreFunctions, o.ignoreFunctions)
	setBool("attach-across-blank-lines", &cfg.AttachAcrossBlankLines, o.attachAcrossBlankLines)
	setString("log-level", &cfg.LogLevel, o.logLevel)

	setBool("force-all", &cfg.ForceAll, o.forceAll)
	setBool("skip-existing", &cfg.SkipExisting, o.skipExisting)
	setBool("write", &cfg.Write, o.write)
	setBool("check", &cfg.Check, o.check)
	setString("review-order", &cfg.ReviewOrder, o.reviewOrder)
	setString("prompt-mode", &cfg.PromptMode, o.promptMode)
	setString("editor", &cfg.Editor, o.editor)

	setString("generator", &cfg.Generator.Kind, o.generator)
	setString("provider", &cfg.Generator.Provider, o.provider)
	setString("model", &cfg.Generator.Model, o.model)
	setString("base-url", &cfg.Generator.BaseURL, o.baseURL)
	if changed("concurrency") {
		cfg.Generator.Concurrency = o.concurrency
	}
	if changed("cache-dir") {
		abs, err := absPath(o.cacheDir)
		if err != nil {
			return err
		}
		cfg.Generator.CacheDir = abs
	}
	setBool("no-summary", &cfg.Generator.NoSummary, o.noSummary)
	if changed("metrics-textfile") {
		abs, err := absPath(o.metricsTextfile)
		if err != nil {
			return err
		}
		cfg.Telemetry.MetricsTextfile = abs
	}
	return nil
}
