// SPDX-License-Identifier: MPL-2.0

// Package resolver turns import specifiers into absolute file paths the way
// the TypeScript compiler does for bundler-style projects: relative
// specifiers, baseUrl, paths wildcards, extension probing and directory
// index files. Package (node_modules) imports are not resolved.
//
// Project configs (tsconfig.json, jsconfig.json) are loaded through a Cache
// that lives for one lint run.
package resolver
