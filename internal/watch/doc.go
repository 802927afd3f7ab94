// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs the linter when the linted tree or its config changes.
//
// Every non-ignored folder under the root is monitored with fsnotify, and
// folders created later are picked up as they appear. Events are coalesced:
// the callback fires once the tree has been quiet for the debounce period,
// with the full set of changed paths.
package watch
