// SPDX-License-Identifier: MPL-2.0

// Package aggregate caps the diagnostics of a run to a display quota while
// keeping every rule represented.
//
// Each rule's diagnostics are first ordered errors-first. The quota is then
// handed out round-robin across the rules, one diagnostic per visit, so a
// single noisy rule cannot crowd out the others. Allocation visits buckets
// in order and moves on after every visit whether or not the bucket could
// take another item.
package aggregate

import (
	"slices"

	"github.com/steigerlint/steiger/pkg/rule"
)

// DefaultQuota is the number of diagnostics shown when none is configured.
const DefaultQuota = 20

// Summary is the aggregated output of a run.
type Summary struct {
	// Diagnostics are the shown diagnostics, grouped by rule in bucket order.
	Diagnostics []rule.FullDiagnostic
	// Hidden counts diagnostics dropped by the quota.
	Hidden int
	// Errors and Warnings count all diagnostics, shown or hidden.
	Errors   int
	Warnings int
}

// SortBySeverity returns a copy of ds with errors before warnings. The order
// within a severity is preserved.
func SortBySeverity(ds []rule.FullDiagnostic) []rule.FullDiagnostic {
	out := slices.Clone(ds)
	slices.SortStableFunc(out, func(a, b rule.FullDiagnostic) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
	return out
}

// Allocate distributes min(quota, sum(sizes)) slots over buckets of the
// given sizes round-robin. A quota of zero or less means no limit.
func Allocate(sizes []int, quota int) []int {
	alloc := make([]int, len(sizes))
	total := 0
	for _, s := range sizes {
		total += max(s, 0)
	}
	if quota <= 0 || quota >= total {
		for i, s := range sizes {
			alloc[i] = max(s, 0)
		}
		return alloc
	}

	remaining := quota
	for cursor := 0; remaining > 0; cursor = (cursor + 1) % len(sizes) {
		if alloc[cursor] < sizes[cursor] {
			alloc[cursor]++
			remaining--
		}
	}
	return alloc
}

// Collapse sorts each bucket by severity and truncates it to its share of
// quota. Bucket order is preserved; empty buckets stay empty. It returns the
// kept buckets and how many diagnostics were dropped.
func Collapse(buckets [][]rule.FullDiagnostic, quota int) ([][]rule.FullDiagnostic, int) {
	sizes := make([]int, len(buckets))
	for i, b := range buckets {
		sizes[i] = len(b)
	}
	alloc := Allocate(sizes, quota)

	out := make([][]rule.FullDiagnostic, len(buckets))
	hidden := 0
	for i, b := range buckets {
		out[i] = SortBySeverity(b)[:alloc[i]]
		hidden += len(b) - alloc[i]
	}
	return out, hidden
}

// Flatten concatenates buckets in order.
func Flatten(buckets [][]rule.FullDiagnostic) []rule.FullDiagnostic {
	var out []rule.FullDiagnostic
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

// Aggregate collapses buckets to quota, flattens them and counts severities.
func Aggregate(buckets [][]rule.FullDiagnostic, quota int) Summary {
	kept, hidden := Collapse(buckets, quota)
	s := Summary{Diagnostics: Flatten(kept), Hidden: hidden}
	for _, b := range buckets {
		for _, d := range b {
			switch d.Severity {
			case rule.SeverityError:
				s.Errors++
			case rule.SeverityWarn:
				s.Warnings++
			}
		}
	}
	return s
}
