// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/internal/config"
	"github.com/steigerlint/steiger/pkg/rule"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra handler receives an App and delegates through it.
	App struct {
		Config  ConfigProvider
		Plugins []rule.Plugin
		stdout  io.Writer
		stderr  io.Writer
		stdin   io.Reader
		getwd   func() (string, error)
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Plugins are registered after the built-in fsd plugin.
		Plugins []rule.Plugin
		Stdout  io.Writer
		Stderr  io.Writer
		Stdin   io.Reader
		// Getwd resolves the working directory; tests point it at a temp dir.
		Getwd func() (string, error)
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}

	return &App{
		Config:  deps.Config,
		Plugins: deps.Plugins,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
		stdin:   deps.Stdin,
		getwd:   deps.Getwd,
	}
}

// newLogger builds the charm logger every command logs through.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// loadConfig resolves settings for the working directory, honoring --config.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, error) {
	wd, err := a.getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	path := flags.configPath
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(wd, path)
	}
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: path,
		ProjectDir:     wd,
	})
}

// newService builds a lint service from resolved settings.
func (a *App) newService(cfg *config.Config, logger *log.Logger) (*lint.Service, error) {
	return lint.NewService(lint.Options{
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		Plugins:     a.Plugins,
	})
}

// resolveRoot turns the optional path argument into an absolute lint root.
// Without one it lints ./src when that folder exists, else the working directory.
func (a *App) resolveRoot(args []string) (string, error) {
	wd, err := a.getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	if len(args) == 0 || args[0] == "" {
		return lint.DefaultRoot(wd), nil
	}
	if filepath.IsAbs(args[0]) {
		return filepath.Clean(args[0]), nil
	}
	return filepath.Join(wd, args[0]), nil
}
