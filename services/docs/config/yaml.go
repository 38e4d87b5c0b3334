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
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envTag marks a scalar read from the environment: `!ENV NAME | default`.
const envTag = "!ENV"

var (
	// ErrEnvNotSet indicates an !ENV variable with no default is unset.
	ErrEnvNotSet = errors.New("environment variable not set")

	// ErrUnknownVar indicates a ${vars.NAME} reference to an undefined var.
	ErrUnknownVar = errors.New("undefined variable")

	varPattern = regexp.MustCompile(`\$\{\s*vars\.([A-Za-z0-9_]+)\s*\}`)
)

// decode parses raw and decodes it into out, resolving !ENV tags first
// and then ${vars.NAME} references.
func decode(raw []byte, out *Config) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]

	if err := resolveEnv(root); err != nil {
		return err
	}
	vars, err := collectVars(root)
	if err != nil {
		return err
	}
	if err := substituteVars(root, vars); err != nil {
		return err
	}
	return root.Decode(out)
}

// resolveEnv replaces every !ENV scalar with the variable's value. The
// tag is cleared so the resolved text is typed like a plain scalar.
func resolveEnv(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == envTag {
		name, def, hasDefault := strings.Cut(n.Value, "|")
		name = strings.TrimSpace(name)
		value, ok := os.LookupEnv(name)
		if !ok {
			if !hasDefault {
				return fmt.Errorf("line %d: %w: %s", n.Line, ErrEnvNotSet, name)
			}
			value = strings.TrimSpace(def)
		}
		n.Tag = ""
		n.Style = 0
		n.Value = value
		return nil
	}
	for _, c := range n.Content {
		if err := resolveEnv(c); err != nil {
			return err
		}
	}
	return nil
}

// collectVars reads the top-level vars mapping. Values may themselves
// come from !ENV but may not reference other vars.
func collectVars(root *yaml.Node) (map[string]string, error) {
	vars := map[string]string{}
	if root.Kind != yaml.MappingNode {
		return vars, nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "vars" {
			continue
		}
		if err := root.Content[i+1].Decode(&vars); err != nil {
			return nil, fmt.Errorf("vars: %w", err)
		}
	}
	return vars, nil
}

func substituteVars(n *yaml.Node, vars map[string]string) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if !strings.Contains(n.Value, "${") {
			return nil
		}
		var missing string
		n.Value = varPattern.ReplaceAllStringFunc(n.Value, func(m string) string {
			name := varPattern.FindStringSubmatch(m)[1]
			v, ok := vars[name]
			if !ok && missing == "" {
				missing = name
			}
			return v
		})
		if missing != "" {
			return fmt.Errorf("line %d: %w: %s", n.Line, ErrUnknownVar, missing)
		}
	case yaml.MappingNode:
		// Keys are left alone.
		for i := 1; i < len(n.Content); i += 2 {
			if err := substituteVars(n.Content[i], vars); err != nil {
				return err
			}
		}
	default:
		for _, c := range n.Content {
			if err := substituteVars(c, vars); err != nil {
				return err
			}
		}
	}
	return nil
}
