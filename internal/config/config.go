// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/steigerlint/steiger/internal/cueutil"
	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/pkg/rule"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application name.
	AppName = "steiger"
	// EnvPrefix prefixes environment overrides, e.g. STEIGER_MAX_SHOWN.
	EnvPrefix = "STEIGER"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "steiger.config"

	schemaDefinition = "#Config"
)

//go:embed config_schema.cue
var configSchema string

// ConfigFileNames lists the discovered file names in lookup order.
var ConfigFileNames = []string{
	ConfigFileName + ".cue",
	ConfigFileName + ".toml",
	ConfigFileName + ".yaml",
	ConfigFileName + ".yml",
}

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Schema returns the embedded CUE schema every config file is validated against.
func Schema() string {
	return configSchema
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	projectDir := opts.ProjectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		projectDir = wd
	}

	if !opts.SkipDotEnv {
		if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
			return nil, issue.NewErrorContext().
				WithKind(issue.KindConfig).
				WithOperation("load environment file").
				WithResource(filepath.Join(projectDir, ".env")).
				WithSuggestion("Use KEY=value lines, one per line").
				Wrap(err).
				BuildError()
		}
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("max_shown", defaults.MaxShown)
	v.SetDefault("fail_on_warnings", defaults.FailOnWarnings)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, issue.NewErrorContext().
				WithKind(issue.KindConfig).
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		resolvedPath = discover(projectDir)
	}

	var objects []rule.ConfigObject
	if resolvedPath != "" {
		var err error
		objects, err = loadFileIntoViper(v, resolvedPath)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithKind(issue.KindConfig).
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check the file syntax for its format (CUE, TOML or YAML)").
				WithSuggestion("Rule entries are a severity (\"off\", \"warn\", \"error\") or [severity, {options}]").
				WithSuggestion("Run 'steiger rules' to list the available rule names").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindConfig).
			WithOperation("parse configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the STEIGER_* environment variables for values of the wrong type").
			Wrap(err).
			BuildError()
	}
	if cfg.Concurrency < 0 {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindConfig).
			WithOperation("validate configuration").
			WithSuggestion("Set concurrency to 0 (GOMAXPROCS) or a positive number").
			Wrap(fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)).
			BuildError()
	}
	cfg.Configs = objects
	cfg.Path = resolvedPath

	return &cfg, nil
}

// discover walks up from dir and returns the first config file found.
func discover(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileIntoViper decodes a config file in any supported format, validates
// it against #Config and merges its settings into Viper. The config objects
// are returned separately; Viper lowercases map keys, which would mangle
// rule option names.
func loadFileIntoViper(v *viper.Viper, path string) ([]rule.ConfigObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	configMap, err := decodeFile(path, data)
	if err != nil {
		return nil, err
	}

	objects, err := parseConfigObjects(configMap["configs"])
	if err != nil {
		return nil, err
	}
	delete(configMap, "configs")

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return objects, nil
}

func decodeFile(path string, data []byte) (map[string]any, error) {
	schema := []byte(configSchema)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		result, err := cueutil.ParseAndDecode[map[string]any](schema, data, schemaDefinition,
			cueutil.WithConcrete(false), cueutil.WithFilename(path))
		if err != nil {
			return nil, err
		}
		return nonNil(*result.Value), nil
	case ".toml":
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid TOML in %s: %w", path, err)
		}
		return validate(schema, raw, path)
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
		return validate(schema, raw, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

func validate(schema []byte, raw map[string]any, path string) (map[string]any, error) {
	result, err := cueutil.ValidateAndDecode[map[string]any](schema, nonNil(raw), schemaDefinition,
		cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	return nonNil(*result.Value), nil
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// parseConfigObjects turns the schema-validated configs list into rule config objects.
func parseConfigObjects(raw any) ([]rule.ConfigObject, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("configs: expected a list, got %T", raw)
	}

	objects := make([]rule.ConfigObject, 0, len(list))
	for i, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("configs[%d]: expected an object, got %T", i, item)
		}

		var obj rule.ConfigObject
		var err error
		if obj.Files, err = stringList(fields["files"]); err != nil {
			return nil, fmt.Errorf("configs[%d].files: %w", i, err)
		}
		if obj.Ignores, err = stringList(fields["ignores"]); err != nil {
			return nil, fmt.Errorf("configs[%d].ignores: %w", i, err)
		}

		if rules, ok := fields["rules"].(map[string]any); ok {
			obj.Rules = make(map[string]rule.RuleEntry, len(rules))
			names := make([]string, 0, len(rules))
			for name := range rules {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				entry, err := rule.ParseRuleEntry(rules[name])
				if err != nil {
					return nil, fmt.Errorf("configs[%d].rules[%q]: %w", i, name, err)
				}
				obj.Rules[name] = entry
			}
		}

		objects = append(objects, obj)
	}
	return objects, nil
}

func stringList(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of strings, got %T", raw)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// loadDotEnv loads KEY=value pairs without overriding variables that are
// already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
