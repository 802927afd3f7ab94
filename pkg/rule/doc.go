// SPDX-License-Identifier: MPL-2.0

// Package rule defines the contracts between steiger's engine and the rule
// catalog: rules and plugins, the diagnostics they produce, fix descriptions,
// severities and configuration objects.
package rule
