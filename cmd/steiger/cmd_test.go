// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"

	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/internal/config"
	"github.com/steigerlint/steiger/internal/engine"
	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/internal/testutil"
	"github.com/steigerlint/steiger/pkg/fstree"
	"github.com/steigerlint/steiger/pkg/rule"
)

// staticConfig serves a fixed configuration.
type staticConfig struct {
	cfg *config.Config
	err error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := *s.cfg
	return &c, nil
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, dir string, cfg *config.Config, args ...string) cliResult {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: staticConfig{cfg: cfg},
		Stdout: &stdout,
		Stderr: &stderr,
		Stdin:  strings.NewReader(""),
		Getwd:  func() (string, error) { return dir, nil },
	})
	root := NewRootCommand(app)
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTree(t, dir, files)
	return dir
}

var (
	cleanProject = map[string]string{
		"src/shared/ui/index.ts":           "export { Button } from './Button'\n",
		"src/shared/ui/Button.tsx":         "export const Button = () => null\n",
		"src/entities/user/index.ts":       "export * from './model/store'\n",
		"src/entities/user/model/store.ts": "export const store = {}\n",
		"src/features/auth/index.ts":       "export { LoginForm } from './ui/LoginForm'\n",
		"src/features/auth/ui/LoginForm.tsx": "import { Button } from '@/shared/ui'\n" +
			"export const LoginForm = () => Button\n",
	}
	brokenProject = map[string]string{
		"src/shared/ui/index.ts":             "export {}\n",
		"src/entities/user/index.ts":         "export {}\n",
		"src/entities/user/model/store.ts":   "export const store = {}\n",
		"src/features/auth/ui/LoginForm.tsx": "export const LoginForm = () => null\n",
	}
	warningProject = map[string]string{
		"src/pages/home/index.ts":        "export {}\n",
		"src/pages/home/ui/Page.tsx":     "export const Page = () => null\n",
		"src/pages/home/utils/format.ts": "export const format = String\n",
	}
)

func TestLintExitCodes(t *testing.T) {
	t.Parallel()

	failOnWarnings := config.DefaultConfig()
	failOnWarnings.FailOnWarnings = true
	publicAPIOff := config.DefaultConfig()
	publicAPIOff.Configs = []rule.ConfigObject{{Rules: map[string]rule.RuleEntry{"fsd/public-api": {Severity: rule.SeverityOff}}}}

	tests := []struct {
		name       string
		files      map[string]string
		cfg        *config.Config
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "clean", files: cleanProject, wantCode: ExitOK, wantStdout: "No problems found"},
		{name: "errors", files: brokenProject, wantCode: ExitProblems, wantStdout: "fsd/public-api"},
		{name: "warnings pass", files: warningProject, wantCode: ExitOK, wantStdout: "fsd/segments-by-purpose"},
		{name: "warnings fail by flag", files: warningProject, args: []string{"--fail-on-warnings"}, wantCode: ExitProblems},
		{name: "warnings fail by config", files: warningProject, cfg: failOnWarnings, wantCode: ExitProblems},
		{name: "flag beats config", files: warningProject, cfg: failOnWarnings, args: []string{"--fail-on-warnings=false"}, wantCode: ExitOK},
		{name: "disabled rule", files: brokenProject, cfg: publicAPIOff, wantCode: ExitOK, wantStdout: "No problems found"},
		{name: "missing root", files: cleanProject, args: []string{"absent"}, wantCode: ExitFatal, wantStderr: "Error:"},
		{name: "explicit root", files: brokenProject, args: []string{"src"}, wantCode: ExitProblems, wantStdout: "fsd/public-api"},
		{name: "json", files: brokenProject, args: []string{"--format", "json"}, wantCode: ExitProblems, wantStdout: `"ruleName": "fsd/public-api"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, project(t, tt.files), tt.cfg, tt.args...)
			if got := exitCode(res.err); got != tt.wantCode {
				t.Fatalf("exit code = %d (err %v), want %d\nstdout:\n%s\nstderr:\n%s", got, res.err, tt.wantCode, res.stdout, res.stderr)
			}
			if !strings.Contains(res.stdout, tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, res.stdout)
			}
			if !strings.Contains(res.stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, res.stderr)
			}
		})
	}
}

func TestLintUsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--format", "sarif"}, "unknown report format"},
		{[]string{"--max-shown", "-2"}, "--max-shown"},
		{[]string{"--concurrency", "-1"}, "--concurrency"},
		{[]string{"--timeout", "-1s"}, "--timeout"},
		{[]string{"a", "b"}, "accepts at most 1 arg"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, t.TempDir(), nil, tt.args...)
			if res.err == nil || !strings.Contains(res.err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", res.err, tt.want)
			}
		})
	}
}

func TestLintConfigError(t *testing.T) {
	t.Parallel()

	cfgErr := issue.NewErrorContext().
		WithKind(issue.KindConfig).
		WithOperation("load configuration").
		WithSuggestion("Check the file syntax").
		Wrap(errors.New("bad yaml")).
		BuildError()

	var stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: staticConfig{err: cfgErr},
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
		Getwd:  func() (string, error) { return t.TempDir(), nil },
	})
	root := NewRootCommand(app)
	root.SilenceErrors = true
	root.SetArgs(nil)

	err := root.ExecuteContext(context.Background())
	if exitCode(err) != ExitFatal {
		t.Fatalf("exit code = %d, want %d", exitCode(err), ExitFatal)
	}
	if !strings.Contains(stderr.String(), "Check the file syntax") {
		t.Errorf("suggestions should be shown:\n%s", stderr.String())
	}
}

func TestLintMaxShownFlag(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"src/features/a/ui/x.ts": "export {}\n",
		"src/features/b/ui/x.ts": "export {}\n",
		"src/features/c/ui/x.ts": "export {}\n",
	}
	res := runCLI(t, project(t, files), nil, "--max-shown", "1")
	if exitCode(res.err) != ExitProblems {
		t.Fatalf("exit code = %d, want %d", exitCode(res.err), ExitProblems)
	}
	if !strings.Contains(res.stdout, "more hidden") {
		t.Errorf("expected hidden diagnostics:\n%s", res.stdout)
	}
}

func TestRulesCommand(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Configs = []rule.ConfigObject{{Rules: map[string]rule.RuleEntry{"fsd/no-processes": {Severity: rule.SeverityOff}}}}

	res := runCLI(t, t.TempDir(), cfg, "rules")
	if res.err != nil {
		t.Fatalf("rules error = %v", res.err)
	}
	for _, want := range []string{"error  fsd/public-api", "warn   fsd/excessive-slicing", "off    fsd/no-processes"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("rules output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestExplainCommand(t *testing.T) {
	t.Parallel()

	res := runCLI(t, t.TempDir(), nil, "explain", "public-api", "--raw")
	if res.err != nil {
		t.Fatalf("explain error = %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "# public-api") {
		t.Errorf("raw docs should be printed verbatim:\n%s", res.stdout)
	}

	res = runCLI(t, t.TempDir(), nil, "explain", "forbiden-imports")
	if exitCode(res.err) != ExitProblems {
		t.Fatalf("exit code = %d, want %d", exitCode(res.err), ExitProblems)
	}
	if !strings.Contains(res.stderr, "Did you mean fsd/forbidden-imports?") {
		t.Errorf("expected a suggestion:\n%s", res.stderr)
	}
}

func TestInspectCommand(t *testing.T) {
	t.Parallel()

	res := runCLI(t, project(t, cleanProject), nil, "inspect")
	if res.err != nil {
		t.Fatalf("inspect error = %v", res.err)
	}
	for _, want := range []string{"src", "shared", "ui", "entities", "user", "model"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Path = "/project/steiger.config.yaml"
	cfg.Configs = []rule.ConfigObject{{
		Files: []string{"shared/**"},
		Rules: map[string]rule.RuleEntry{
			"fsd/excessive-slicing": {Severity: rule.SeverityWarn, Options: map[string]any{"maxSlices": 3}},
		},
	}}

	res := runCLI(t, t.TempDir(), cfg, "config", "show")
	if res.err != nil {
		t.Fatalf("config show error = %v", res.err)
	}
	for _, want := range []string{"Config file: /project/steiger.config.yaml", "max_shown: 20", "shared/**", "fsd/excessive-slicing", "maxSlices: 3"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestClassifyLintError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"missing root", fmt.Errorf("scan: %w", fstree.ErrRootNotFound), issue.RootNotFoundId},
		{"file root", fstree.ErrRootNotFolder, issue.RootNotFoundId},
		{"unknown rule", fmt.Errorf("plan: %w", engine.ErrUnknownRule), issue.UnknownRuleId},
		{"severity", rule.ErrInvalidSeverity, issue.InvalidSeverityId},
		{"timeout", context.DeadlineExceeded, issue.LintTimeoutId},
		{"config", issue.WrapWithContext(errors.New("x"), issue.KindConfig, "load", "f"), issue.ConfigLoadFailedId},
		{"other", errors.New("x"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyLintError(tt.err); got != tt.want {
				t.Errorf("classifyLintError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTouchesFile(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/p/src")
	inside := filepath.FromSlash("/p/src/steiger.config.yaml")
	outside := filepath.FromSlash("/p/steiger.config.yaml")

	tests := []struct {
		name    string
		changed []string
		path    string
		want    bool
	}{
		{"outside root", []string{"features/a.ts", outside}, outside, true},
		{"inside root", []string{"steiger.config.yaml"}, inside, true},
		{"unrelated", []string{"features/a.ts"}, outside, false},
		{"no config", []string{"features/a.ts"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := touchesFile(tt.changed, root, tt.path); got != tt.want {
				t.Errorf("touchesFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handleError(&buf, fang.Styles{}, &ExitError{Code: ExitProblems})
	if buf.Len() != 0 {
		t.Errorf("reported exit errors should be silent, got %q", buf.String())
	}

	handleError(&buf, fang.Styles{}, errors.New(`unknown flag: --nope`))
	if !strings.Contains(buf.String(), "unknown flag: --nope") || !strings.Contains(buf.String(), "--help") {
		t.Errorf("usage errors should point at --help, got %q", buf.String())
	}
}

func TestRenderModel(t *testing.T) {
	t.Parallel()

	out := renderModel(&lint.Model{
		Root: filepath.FromSlash("/p/src"),
		Layers: []lint.LayerModel{
			{Name: "shared", Segments: []string{"ui", "api"}},
			{Name: "features", Sliced: true, Slices: []lint.SliceModel{{Name: "auth", Segments: []string{"model"}}}},
			{Name: "pages", Sliced: true},
		},
	})
	for _, want := range []string{"src", "shared", "ui", "api", "features", "auth", "model", "pages", "(empty)"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}

	if empty := renderModel(&lint.Model{Root: "/p"}); !strings.Contains(empty, "no layers found") {
		t.Errorf("empty model = %q", empty)
	}
}
