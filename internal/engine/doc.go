// SPDX-License-Identifier: MPL-2.0

// Package engine resolves configuration objects into an execution plan and
// runs the planned rules concurrently over an immutable tree.
//
// A rule that returns an error or panics is recorded as a RuleFailure and
// contributes no diagnostics; every other rule still runs. Diagnostics are
// returned in buckets, one per planned rule, in registration order, ready
// for the aggregate package.
package engine
