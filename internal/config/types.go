// SPDX-License-Identifier: MPL-2.0

package config

import (
	"github.com/steigerlint/steiger/internal/aggregate"
	"github.com/steigerlint/steiger/pkg/rule"
)

// Config holds the resolved steiger settings.
type Config struct {
	// MaxShown caps the number of reported diagnostics. Zero or less is unlimited.
	MaxShown int `json:"max_shown,omitempty" mapstructure:"max_shown"`
	// FailOnWarnings makes warnings fail the run.
	FailOnWarnings bool `json:"fail_on_warnings,omitempty" mapstructure:"fail_on_warnings"`
	// Concurrency bounds the number of rules running at once. Zero means GOMAXPROCS.
	Concurrency int `json:"concurrency,omitempty" mapstructure:"concurrency"`
	// Configs are the user's config objects, applied after the plugins'
	// recommended ones.
	Configs []rule.ConfigObject `json:"configs,omitempty" mapstructure:"-"`

	// Path is the config file the settings were read from, empty when none was found.
	Path string `json:"-" mapstructure:"-"`
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() *Config {
	return &Config{
		MaxShown:       aggregate.DefaultQuota,
		FailOnWarnings: false,
		Concurrency:    0,
	}
}
