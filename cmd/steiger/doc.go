// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the steiger command line.
//
// The root command lints a folder once, or keeps re-linting it with --watch.
// Subcommands list and explain rules, show how a project is classified,
// print the resolved configuration and serve the linter over MCP.
package cmd
