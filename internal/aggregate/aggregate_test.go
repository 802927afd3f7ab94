// SPDX-License-Identifier: MPL-2.0

package aggregate

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/steigerlint/steiger/pkg/rule"
)

func diag(name string, sev rule.Severity) rule.FullDiagnostic {
	return rule.FullDiagnostic{Message: name, RuleName: "test/" + name[:1], Severity: sev}
}

func messages(ds []rule.FullDiagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

func TestCollapse_QuotaThreeScenario(t *testing.T) {
	t.Parallel()

	buckets := [][]rule.FullDiagnostic{
		{diag("e1", rule.SeverityError), diag("e2", rule.SeverityError), diag("e3", rule.SeverityError)},
		{diag("w1", rule.SeverityWarn)},
		{},
	}

	kept, hidden := Collapse(buckets, 3)
	if got := messages(Flatten(kept)); !slices.Equal(got, []string{"e1", "e2", "w1"}) {
		t.Errorf("Flatten(Collapse()) = %v, want [e1 e2 w1]", got)
	}
	if hidden != 1 {
		t.Errorf("hidden = %d, want 1", hidden)
	}
	if len(kept[2]) != 0 {
		t.Errorf("empty bucket contributed %v", kept[2])
	}
}

func TestSortBySeverity_StableErrorsFirst(t *testing.T) {
	t.Parallel()

	in := []rule.FullDiagnostic{
		diag("w1", rule.SeverityWarn),
		diag("e1", rule.SeverityError),
		diag("w2", rule.SeverityWarn),
		diag("e2", rule.SeverityError),
	}
	got := messages(SortBySeverity(in))
	if !slices.Equal(got, []string{"e1", "e2", "w1", "w2"}) {
		t.Errorf("SortBySeverity() = %v", got)
	}
	if in[0].Message != "w1" {
		t.Error("SortBySeverity() modified its input")
	}
}

func TestAllocate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sizes []int
		quota int
		want  []int
	}{
		{sizes: []int{3, 1, 0}, quota: 3, want: []int{2, 1, 0}},
		{sizes: []int{5, 5, 5}, quota: 7, want: []int{3, 2, 2}},
		{sizes: []int{0, 10, 1}, quota: 4, want: []int{0, 3, 1}},
		{sizes: []int{2, 2}, quota: 20, want: []int{2, 2}},
		{sizes: []int{30, 1}, quota: 0, want: []int{30, 1}},
		{sizes: []int{30, 1}, quota: -1, want: []int{30, 1}},
		{sizes: nil, quota: 5, want: []int{}},
		{sizes: []int{0, 0}, quota: 5, want: []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%d", tt.sizes, tt.quota), func(t *testing.T) {
			t.Parallel()

			if got := Allocate(tt.sizes, tt.quota); !slices.Equal(got, tt.want) {
				t.Errorf("Allocate(%v, %d) = %v, want %v", tt.sizes, tt.quota, got, tt.want)
			}
		})
	}
}

func TestCollapse_Properties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	severities := []rule.Severity{rule.SeverityError, rule.SeverityWarn}

	for iter := range 500 {
		buckets := make([][]rule.FullDiagnostic, rng.IntN(8))
		total := 0
		for i := range buckets {
			n := rng.IntN(12)
			for j := range n {
				buckets[i] = append(buckets[i], diag(fmt.Sprintf("%c%d", 'a'+i, j), severities[rng.IntN(2)]))
			}
			total += n
		}
		quota := rng.IntN(30) - 2

		kept, hidden := Collapse(buckets, quota)
		want := total
		if quota > 0 {
			want = min(quota, total)
		}

		shown := len(Flatten(kept))
		if shown != want {
			t.Fatalf("iter %d: shown %d, want min(quota=%d, total=%d)", iter, shown, quota, total)
		}
		if shown+hidden != total {
			t.Fatalf("iter %d: shown %d + hidden %d != total %d", iter, shown, hidden, total)
		}

		for i := range kept {
			for j := range kept {
				undisplayedI := len(buckets[i]) > len(kept[i])
				undisplayedJ := len(buckets[j]) > len(kept[j])
				if undisplayedI && undisplayedJ && abs(len(kept[i])-len(kept[j])) > 1 {
					t.Fatalf("iter %d: buckets %d and %d both truncated but got %d and %d", iter, i, j, len(kept[i]), len(kept[j]))
				}
				if undisplayedI && len(kept[j]) > len(kept[i])+1 {
					t.Fatalf("iter %d: truncated bucket %d got %d while bucket %d got %d", iter, i, len(kept[i]), j, len(kept[j]))
				}
			}

			seenWarn := false
			for _, d := range kept[i] {
				if d.Severity == rule.SeverityWarn {
					seenWarn = true
				} else if seenWarn {
					t.Fatalf("iter %d: error after warning in bucket %d", iter, i)
				}
			}

			if len(buckets[i]) == 0 && len(kept[i]) != 0 {
				t.Fatalf("iter %d: empty bucket %d contributed", iter, i)
			}
		}
	}
}

func TestAggregate_Counts(t *testing.T) {
	t.Parallel()

	buckets := [][]rule.FullDiagnostic{
		{diag("e1", rule.SeverityError), diag("w1", rule.SeverityWarn), diag("e2", rule.SeverityError)},
		{diag("w2", rule.SeverityWarn)},
	}
	s := Aggregate(buckets, 2)
	if s.Errors != 2 || s.Warnings != 2 {
		t.Errorf("Errors = %d, Warnings = %d", s.Errors, s.Warnings)
	}
	if s.Hidden != 2 {
		t.Errorf("Hidden = %d, want 2", s.Hidden)
	}
	if got := messages(s.Diagnostics); !slices.Equal(got, []string{"e1", "w2"}) {
		t.Errorf("Diagnostics = %v", got)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
