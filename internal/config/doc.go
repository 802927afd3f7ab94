// SPDX-License-Identifier: MPL-2.0

// Package config loads steiger settings using Viper.
//
// Settings come from, in increasing precedence: built-in defaults, a config
// file, and STEIGER_* environment variables (a .env file in the project
// directory is loaded first). The config file is either passed explicitly or
// discovered by walking up from the project directory, looking for
// steiger.config.cue, steiger.config.toml, steiger.config.yaml and
// steiger.config.yml in that order.
//
// Whatever the format, the document is validated against the embedded CUE
// schema (config_schema.cue) so that every format reports errors the same way.
package config
