// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds the benchmarks used for PGO profile generation.
// They cover the hot paths of a lint run:
//   - config file loading and CUE schema validation
//   - tree scanning and classification
//   - import extraction from source files
//   - diagnostic aggregation and the end-to-end lint
//
// To generate a profile, run:
//
//	go test -run='^$' -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
