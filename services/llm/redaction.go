// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"regexp"
)

// secretPattern pairs a secret format with its replacement label.
type secretPattern struct {
	re          *regexp.Regexp
	replacement string
}

// secretPatterns are applied in order. Longer prefixes come before shorter
// ones that would also match ("sk-ant-" before "sk-").
var secretPatterns = []secretPattern{
	{regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`), "[REDACTED:anthropic_key]"},
	{regexp.MustCompile(`sk-(?:proj-)?[A-Za-z0-9_-]{20,}`), "[REDACTED:openai_key]"},
	{regexp.MustCompile(`AIza[A-Za-z0-9_-]{30,}`), "[REDACTED:google_key]"},
	{regexp.MustCompile(`\b(?:AKIA|ASIA)[A-Z0-9]{16}\b`), "[REDACTED:aws_key]"},
	{regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{30,}`), "[REDACTED:github_token]"},
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9._-]{10,}`), "[REDACTED:bearer_token]"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)(\s*[=:]\s*)["']?[^\s"'&]{3,}["']?`), "${1}${2}[REDACTED]"},
	{regexp.MustCompile(`(postgres|postgresql|mysql|mongodb|redis)://[^\s@/]+@`), "${1}://[REDACTED]@"},
	{regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`), "[REDACTED:private_key]"},
}

// Redact replaces known secret formats in s with labelled placeholders.
//
// Description:
//
//	Function bodies are sent to the generation backend as part of the
//	prompt, and backend errors are logged. Both pass through Redact so a
//	credential hard-coded in the user's source never leaves the machine
//	or lands in a log.
//
// Limitations:
//   - Pattern based. Secrets in unknown formats are not detected.
//   - Single-line patterns only.
//
// Thread Safety: Safe for concurrent use.
func Redact(s string) string {
	if s == "" {
		return s
	}
	for _, p := range secretPatterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}
