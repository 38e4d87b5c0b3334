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
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/docnsrt/services/docs/model"
	"github.com/AleutianAI/docnsrt/services/docs/render"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the cross-field rules.
//
// Outputs:
//   - error: Wraps ErrInvalidConfig and lists every failing field.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if c.Language != "" {
		if _, err := render.NewRenderer(c.Language, c.Style); err != nil && errors.Is(err, model.ErrUnsupportedStyle) {
			problems = append(problems, err.Error())
		}
	}
	if c.Generator.Kind == "llm" && c.Generator.Provider == "" {
		problems = append(problems, "generator.provider is required when generator.kind is llm")
	}
	if c.Check && c.ForceAll {
		problems = append(problems, "check and force_all cannot both be set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
