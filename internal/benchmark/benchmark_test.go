// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/steigerlint/steiger/internal/aggregate"
	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/internal/config"
	"github.com/steigerlint/steiger/internal/imports"
	"github.com/steigerlint/steiger/internal/testutil"
	"github.com/steigerlint/steiger/pkg/rule"
)

const (
	// sampleConfig is a representative steiger.config.cue exercising every
	// setting and both rule entry shapes.
	sampleConfig = `max_shown: 50
fail_on_warnings: false
concurrency: 4
configs: [
	{ignores: ["**/__mocks__/**", "**/*.stories.tsx"]},
	{
		files: ["shared/**"]
		rules: {
			"fsd/public-api": "warn"
			"fsd/segments-by-purpose": "off"
		}
	},
	{
		rules: {
			"fsd/excessive-slicing": ["warn", {maxSlices: 30}]
			"fsd/forbidden-imports": "error"
		}
	},
]
`

	// sampleSource is a typical component module with a mix of import forms.
	sampleSource = `import React, { useState } from 'react'
import type { User } from '@/entities/user'
import { Button, Input } from '@/shared/ui'
import { api } from '../api/client'
import * as styles from './styles.module.css'
export { LoginForm } from './LoginForm'
export * from './hooks'

const LazyPage = React.lazy(() => import('@/pages/profile'))
const legacy = require('../legacy/adapter')

// import { commented } from 'nowhere'
export function Widget(props: { user: User }) {
	const [value, setValue] = useState('')
	return <Input value={value} onChange={setValue} />
}
`

	// benchSlices is the number of feature and entity slices in the generated project.
	benchSlices = 40
)

// writeProject generates a Feature-Sliced project under dir/src. Every fifth
// feature is missing its index file and every seventh reaches into a sibling,
// so the rules have diagnostics to produce.
func writeProject(tb testing.TB, dir string) string {
	tb.Helper()

	files := map[string]string{
		"src/app/providers/index.ts": "export { Providers } from './Providers'\n",
		"src/app/providers/Providers.tsx": "import { Button } from '@/shared/ui'\n" +
			"export const Providers = () => Button\n",
		"src/shared/ui/index.ts":         "export { Button } from './Button'\n",
		"src/shared/ui/Button.tsx":       "export const Button = () => null\n",
		"src/shared/api/index.ts":        "export { client } from './client'\n",
		"src/shared/api/client.ts":       "export const client = {}\n",
		"src/shared/lib/index.ts":        "export * from './format'\n",
		"src/shared/lib/format.ts":       "export const format = String\n",
		"src/pages/home/index.ts":        "export { HomePage } from './ui/HomePage'\n",
		"src/pages/home/ui/HomePage.tsx": "import { Feature0 } from '@/features/feature0'\nexport const HomePage = () => Feature0\n",
	}

	for i := range benchSlices {
		entity := fmt.Sprintf("src/entities/entity%d", i)
		files[entity+"/index.ts"] = "export * from './model/store'\n"
		files[entity+"/model/store.ts"] = "import { client } from '@/shared/api'\nexport const store = client\n"

		feature := fmt.Sprintf("src/features/feature%d", i)
		if i%5 != 0 {
			files[feature+"/index.ts"] = fmt.Sprintf("export { Feature%d } from './ui/Feature'\n", i)
		}
		src := fmt.Sprintf("import { store } from '@/entities/entity%d'\n", i)
		if i%7 == 0 && i > 0 {
			src += fmt.Sprintf("import { Feature%d } from '@/features/feature%d/ui/Feature'\n", i-1, i-1)
		}
		files[feature+"/ui/Feature.tsx"] = src + fmt.Sprintf("export const Feature%d = () => store\n", i)
		files[feature+"/model/state.ts"] = "export const state = {}\n"
	}

	testutil.WriteTree(tb, dir, files)
	return filepath.Join(dir, "src")
}

// BenchmarkConfigLoading benchmarks config discovery, CUE validation and the
// viper merge. This exercises the hot path in internal/config/config.go.
func BenchmarkConfigLoading(b *testing.B) {
	dir := b.TempDir()
	testutil.MustWriteFile(b, filepath.Join(dir, "steiger.config.cue"), sampleConfig)

	provider := config.NewProvider()
	opts := config.LoadOptions{ProjectDir: dir, SkipDotEnv: true}

	b.ResetTimer()
	for b.Loop() {
		cfg, err := provider.Load(b.Context(), opts)
		if err != nil {
			b.Fatalf("Load failed: %v", err)
		}
		if len(cfg.Configs) != 3 {
			b.Fatalf("expected 3 config objects, got %d", len(cfg.Configs))
		}
	}
}

// BenchmarkScan benchmarks reading a project into a tree.
func BenchmarkScan(b *testing.B) {
	root := writeProject(b, b.TempDir())
	ignores := []string{"**/__mocks__/**"}

	b.ResetTimer()
	for b.Loop() {
		if _, err := lint.Scan(b.Context(), root, ignores); err != nil {
			b.Fatalf("Scan failed: %v", err)
		}
	}
}

// BenchmarkClassify benchmarks splitting a scanned tree into layers, slices
// and segments.
func BenchmarkClassify(b *testing.B) {
	root := writeProject(b, b.TempDir())
	tree, err := lint.Scan(b.Context(), root, nil)
	if err != nil {
		b.Fatalf("Scan failed: %v", err)
	}

	b.ResetTimer()
	for b.Loop() {
		model := lint.Classify(tree)
		if len(model.Layers) == 0 {
			b.Fatal("no layers classified")
		}
	}
}

// BenchmarkImportExtraction benchmarks pulling import specifiers out of a
// source file. Import-based rules run it on every file.
func BenchmarkImportExtraction(b *testing.B) {
	src := []byte(sampleSource)

	b.ResetTimer()
	for b.Loop() {
		if got := imports.Extract(src); len(got) == 0 {
			b.Fatal("no imports extracted")
		}
	}
}

// BenchmarkImportExtractionLarge benchmarks a file far longer than usual.
func BenchmarkImportExtractionLarge(b *testing.B) {
	src := []byte(strings.Repeat(sampleSource, 200))

	b.ResetTimer()
	for b.Loop() {
		imports.Extract(src)
	}
}

// BenchmarkAggregate benchmarks severity sorting and the round-robin quota
// over many rules with uneven diagnostic counts.
func BenchmarkAggregate(b *testing.B) {
	buckets := make([][]rule.FullDiagnostic, 12)
	for i := range buckets {
		for j := range (i + 1) * 15 {
			severity := rule.SeverityError
			if j%3 == 0 {
				severity = rule.SeverityWarn
			}
			d := rule.At(fmt.Sprintf("/p/src/features/f%d/ui/x%d.ts", i, j), "problem")
			buckets[i] = append(buckets[i], d.Stamp(fmt.Sprintf("fsd/rule-%d", i), severity, ""))
		}
	}

	b.ResetTimer()
	for b.Loop() {
		s := aggregate.Aggregate(buckets, aggregate.DefaultQuota)
		if len(s.Diagnostics) != aggregate.DefaultQuota {
			b.Fatalf("expected %d diagnostics, got %d", aggregate.DefaultQuota, len(s.Diagnostics))
		}
	}
}

// BenchmarkFullLint benchmarks the end-to-end pipeline: plan, scan, rules and
// aggregation.
func BenchmarkFullLint(b *testing.B) {
	root := writeProject(b, b.TempDir())

	svc, err := lint.NewService(lint.Options{})
	if err != nil {
		b.Fatalf("NewService failed: %v", err)
	}
	req := lint.Request{Root: root, MaxShown: aggregate.DefaultQuota}

	b.ResetTimer()
	for b.Loop() {
		r, err := svc.Lint(b.Context(), req)
		if err != nil {
			b.Fatalf("Lint failed: %v", err)
		}
		if r.Summary.Errors == 0 {
			b.Fatal("expected the generated project to have errors")
		}
	}
}

// BenchmarkFullLintSerial is BenchmarkFullLint with one rule at a time, to
// compare against the default fan-out.
func BenchmarkFullLintSerial(b *testing.B) {
	root := writeProject(b, b.TempDir())

	svc, err := lint.NewService(lint.Options{Concurrency: 1})
	if err != nil {
		b.Fatalf("NewService failed: %v", err)
	}
	req := lint.Request{Root: root}

	b.ResetTimer()
	for b.Loop() {
		if _, err := svc.Lint(b.Context(), req); err != nil {
			b.Fatalf("Lint failed: %v", err)
		}
	}
}
