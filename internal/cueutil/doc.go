// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Config files are validated in three steps:
//
//  1. Compile the embedded schema
//  2. Compile user data (or encode already-decoded TOML/YAML data) and unify
//     with the schema
//  3. Validate and decode to a Go struct
//
// The package also reads JSON-with-comments files such as tsconfig.json,
// which CUE accepts once block comments are removed.
package cueutil
