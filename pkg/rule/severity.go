// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"errors"
	"fmt"
)

const (
	// SeverityOff disables a rule. It never appears on a reported diagnostic.
	SeverityOff Severity = "off"
	// SeverityWarn reports a diagnostic without failing the run.
	SeverityWarn Severity = "warn"
	// SeverityError reports a diagnostic that fails the run.
	SeverityError Severity = "error"
)

// ErrInvalidSeverity is returned for severities other than off, warn or error.
var ErrInvalidSeverity = errors.New("invalid severity")

// Severity is the level a rule is configured at.
type Severity string

// ParseSeverity validates s as a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if err := sev.Validate(); err != nil {
		return "", err
	}
	return sev, nil
}

// Validate returns ErrInvalidSeverity unless s is a known severity.
func (s Severity) Validate() error {
	switch s {
	case SeverityOff, SeverityWarn, SeverityError:
		return nil
	default:
		return fmt.Errorf("%w %q (expected %q, %q or %q)", ErrInvalidSeverity, string(s), SeverityOff, SeverityWarn, SeverityError)
	}
}

// String returns the severity name.
func (s Severity) String() string { return string(s) }

// Rank orders severities for sorting: error > warn > off.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarn:
		return 1
	default:
		return 0
	}
}
