// SPDX-License-Identifier: MPL-2.0

// Package lint runs the steiger pipeline: scan a folder, resolve the rule
// configuration into a plan, run the rules and aggregate their diagnostics.
// It decouples the CLI, watch mode and the MCP server from the engine.
package lint
