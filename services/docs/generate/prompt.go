// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/docnsrt/services/docs/model"
	"github.com/AleutianAI/docnsrt/services/llm"
)

// MaxBodyChars is the body length above which the body is cut to its
// first chunk before it is placed in the prompt.
const MaxBodyChars = 4000

const truncatedMarker = "\n... (truncated)"

//go:embed prompt.yaml
var defaultPromptYAML []byte

// promptFile is the on-disk shape of a prompt template file.
type promptFile struct {
	PromptTemplate string `yaml:"prompt_template"`
}

// Prompt builds the backend prompt for a function.
//
// Thread Safety: Immutable after LoadPrompt; safe for concurrent use.
type Prompt struct {
	template string
	splitter textsplitter.RecursiveCharacter
	expected string
}

// LoadPrompt parses a prompt template file. An empty path loads the
// embedded default.
func LoadPrompt(path string) (*Prompt, error) {
	raw := defaultPromptYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompt file: %w", err)
		}
		raw = b
	}

	var pf promptFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse prompt file: %w", err)
	}
	if strings.TrimSpace(pf.PromptTemplate) == "" {
		return nil, errors.New("prompt file has no prompt_template")
	}

	expected, err := json.MarshalIndent(model.TemplateValues{
		Summary:           "A summary of what the function does based on its definition.",
		Parameters:        []model.Parameter{{Name: "parameter", Type: "type", Description: "description of parameter"}},
		ReturnDescription: "A description of the return value if there is one.",
		ReturnType:        "Type of return value",
		Remarks:           "A remark about usage if necessary.",
		Exceptions:        []model.ExceptionDoc{{Type: "type", Description: "description of exception"}},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode expected format: %w", err)
	}

	return &Prompt{
		template: pf.PromptTemplate,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(MaxBodyChars),
			textsplitter.WithChunkOverlap(0),
		),
		expected: string(expected),
	}, nil
}

// Build fills the template for fc. Secrets in the body and in existing
// comments are redacted before they are placed in the prompt.
func (p *Prompt) Build(fc model.FunctionContext) string {
	var comments string
	if fc.Existing != nil {
		comments = strings.Join(fc.Existing.Lines, "\n")
	}
	r := strings.NewReplacer(
		"{qualified_name}", fc.QualifiedName,
		"{signature}", fc.Signature,
		"{preceding_comments}", llm.Redact(comments),
		"{body}", llm.Redact(p.truncate(fc.Body)),
		"{expected_json_format}", p.expected,
	)
	return r.Replace(p.template)
}

// truncate cuts long bodies to the first splitter chunk, which ends on a
// paragraph or line boundary where one exists.
func (p *Prompt) truncate(body string) string {
	if len(body) <= MaxBodyChars {
		return body
	}
	chunks, err := p.splitter.SplitText(body)
	if err != nil || len(chunks) == 0 {
		return body[:MaxBodyChars] + truncatedMarker
	}
	return chunks[0] + truncatedMarker
}
