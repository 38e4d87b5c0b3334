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

	"github.com/spf13/cobra"
)

var (
	opts runOptions

	rootCmd = &cobra.Command{
		Use:   "docnsrt",
		Short: "Generate, review and insert docstrings",
		Long: `docnsrt finds the functions of a Python or C# project, generates a
docstring for each, lets you accept, edit or skip them and writes the
approved ones into the source files.

Settings come from .docnsrt.yaml in the working directory or a parent,
overridden by any flag given explicitly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Generate and insert docstrings",
		Args:  cobra.NoArgs,
		RunE:  runDocnsrt,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "List functions without a docstring; exit 1 if any",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the docnsrt version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "docnsrt", version)
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: discover .docnsrt.yaml)")
	pf.StringVarP(&opts.projectDir, "project-dir", "d", "", "Project directory to process")
	pf.StringVarP(&opts.language, "language", "l", "", "Source language: python or csharp")
	pf.StringSliceVar(&opts.files, "files", nil, "File globs to include")
	pf.StringSliceVar(&opts.ignoreFiles, "ignore-files", nil, "File globs to exclude")
	pf.StringSliceVar(&opts.functions, "functions", nil, "Function name globs to include")
	pf.StringSliceVar(&opts.ignoreFunctions, "ignore-functions", nil, "Function name globs to exclude")
	pf.BoolVar(&opts.attachAcrossBlankLines, "attach-across-blank-lines", false,
		"Treat a comment separated from the signature by blank lines as its docstring")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (env DOCNSRT_LOG_LEVEL)")

	f := runCmd.Flags()
	f.StringVarP(&opts.style, "style", "s", "", "Docstring style: pep, numpy, xml, doxygen or basic")
	f.BoolVar(&opts.forceAll, "force-all", false, "Accept every docstring without review")
	f.BoolVar(&opts.skipExisting, "skip-existing", false, "Leave documented functions alone")
	f.BoolVar(&opts.write, "write", true, "Write approved docstrings (--write=false prints them)")
	f.BoolVar(&opts.check, "check", false, "Only report missing docstrings, like the check command")
	f.StringVar(&opts.reviewOrder, "review-order", "", "forward or reverse")
	f.StringVar(&opts.promptMode, "prompt-mode", "", "auto, tui, form or line")
	f.StringVar(&opts.editor, "editor", "", "Editor command for EDIT (default $EDITOR)")
	f.StringVar(&opts.generator, "generator", "", "placeholder or llm")
	f.StringVar(&opts.provider, "provider", "", "LLM provider: openai or ollama")
	f.StringVar(&opts.model, "model", "", "LLM model name")
	f.StringVar(&opts.baseURL, "base-url", "", "LLM endpoint override")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Parallel generation requests per file")
	f.StringVar(&opts.cacheDir, "cache-dir", "", "Persistent LLM response cache directory")
	f.BoolVar(&opts.noSummary, "no-summary", false, "Leave the placeholder summary empty")
	f.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write run metrics in Prometheus text format")

	rootCmd.AddCommand(runCmd, checkCmd, versionCmd)
}
