// SPDX-License-Identifier: MPL-2.0

// Package report renders lint reports for humans (pretty) and machines (JSON).
package report
