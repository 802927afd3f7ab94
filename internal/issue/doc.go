// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Errors are classified by Kind so the CLI can tell fatal ingest and config
// problems apart from recovered rule failures. The catalog in this package
// holds Markdown guidance for the common failures, rendered with glamour.
package issue
