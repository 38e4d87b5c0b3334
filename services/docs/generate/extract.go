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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// ExtractJSON returns the first balanced JSON object in text.
//
// Description:
//
//	Models often wrap the object in prose or a fenced block. The scan
//	tracks brace depth outside string literals, so braces inside JSON
//	strings do not end the object early.
//
// Outputs:
//   - string: The object text including its braces.
//   - error: ErrMalformedResponse when no complete object is found.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := matchBrace(text, start); end > 0 {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
}

// matchBrace returns the index of the brace closing the one at start, or
// -1 when the object is unterminated.
func matchBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ParseValues decodes a backend reply into TemplateValues.
func ParseValues(reply string) (model.TemplateValues, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return model.TemplateValues{}, err
	}
	var v model.TemplateValues
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return model.TemplateValues{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(v.Summary) == "" {
		return model.TemplateValues{}, fmt.Errorf("%w: empty summary", ErrMalformedResponse)
	}
	return v, nil
}
