// SPDX-License-Identifier: MPL-2.0

// Package fsd classifies a folder tree into the Feature-Sliced Design model:
// ordered layers, slices (optionally nested in slice-groups) and segments.
//
// Every function here is a pure read-only query over an fstree. Nothing is
// cached between calls, so results are always consistent with the tree that
// is passed in and the functions are safe to call from many rules at once.
package fsd
