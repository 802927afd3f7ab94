// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/steigerlint/steiger/internal/app/lint"
)

const (
	// FormatPretty groups diagnostics by path with colors when the writer is a terminal.
	FormatPretty Format = "pretty"
	// FormatJSON writes a single JSON document.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// Format selects a reporter.
type Format string

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatPretty, FormatJSON}
}

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatPretty, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (expected pretty or json)", ErrUnknownFormat, s)
	}
}

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r *lint.Report) error {
	switch format {
	case FormatJSON:
		return JSON(w, r)
	case FormatPretty, "":
		return Pretty(w, r)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
