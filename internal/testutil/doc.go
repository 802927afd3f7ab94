// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// WriteTree lays out a project fixture on disk from a map of relative paths;
// MustWriteFile and MustMkdirAll cover single files and folders.
package testutil
