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
	"context"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// Placeholder values written for the user to fill in.
const (
	PlaceholderSummary     = "_summary_"
	PlaceholderType        = "_type_"
	PlaceholderDescription = "_description_"
	PlaceholderReturns     = "_returns_"
	PlaceholderReturnType  = "_return_type_"
	PlaceholderRemarks     = "_remarks_"
)

// PlaceholderGenerator fills every field with a marker the user replaces
// by hand. It never fails and needs no backend.
type PlaceholderGenerator struct {
	NoSummary bool
}

// Name implements Generator.
func (g *PlaceholderGenerator) Name() string { return KindPlaceholder }

// Generate implements Generator.
func (g *PlaceholderGenerator) Generate(ctx context.Context, fc model.FunctionContext) (model.TemplateValues, error) {
	if err := ctx.Err(); err != nil {
		recordGenerate(KindPlaceholder, err, false)
		return model.TemplateValues{}, err
	}
	defer recordGenerate(KindPlaceholder, nil, false)

	v := model.TemplateValues{
		Summary:           PlaceholderSummary,
		ReturnDescription: PlaceholderReturns,
		ReturnType:        orPlaceholder(fc.ReturnType, PlaceholderReturnType),
		Remarks:           PlaceholderRemarks,
	}
	if g.NoSummary {
		v.Summary = ""
	}
	for _, p := range fc.Parameters {
		v.Parameters = append(v.Parameters, model.Parameter{
			Name:        p.Name,
			Type:        orPlaceholder(p.Type, PlaceholderType),
			Description: PlaceholderDescription,
		})
	}
	return v, nil
}

// Close implements Generator.
func (g *PlaceholderGenerator) Close() error { return nil }

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
