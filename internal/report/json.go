// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"io"

	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/pkg/rule"
)

type (
	jsonReport struct {
		Root        string                `json:"root"`
		Diagnostics []rule.FullDiagnostic `json:"diagnostics"`
		Hidden      int                   `json:"hidden"`
		Errors      int                   `json:"errors"`
		Warnings    int                   `json:"warnings"`
		Failures    []jsonFailure         `json:"failures"`
	}

	jsonFailure struct {
		RuleName string `json:"ruleName"`
		Error    string `json:"error"`
		Panicked bool   `json:"panicked,omitempty"`
	}
)

// JSON writes r as an indented JSON document. Paths stay absolute.
func JSON(w io.Writer, r *lint.Report) error {
	out := jsonReport{
		Root:        r.Root,
		Diagnostics: r.Summary.Diagnostics,
		Hidden:      r.Summary.Hidden,
		Errors:      r.Summary.Errors,
		Warnings:    r.Summary.Warnings,
		Failures:    make([]jsonFailure, 0, len(r.Failures)),
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []rule.FullDiagnostic{}
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, jsonFailure{
			RuleName: f.RuleName,
			Error:    f.Err.Error(),
			Panicked: f.Panicked,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
