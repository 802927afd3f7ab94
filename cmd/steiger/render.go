// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/steigerlint/steiger/internal/engine"
	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/pkg/fstree"
	"github.com/steigerlint/steiger/pkg/rule"
)

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their Format method, which adds the cause chain in verbose mode.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// classifyLintError maps a fatal lint failure to the issue catalog entry that
// explains it.
func classifyLintError(err error) issue.Id {
	switch {
	case errors.Is(err, fstree.ErrRootNotFound), errors.Is(err, fstree.ErrRootNotFolder):
		return issue.RootNotFoundId
	case errors.Is(err, engine.ErrUnknownRule):
		return issue.UnknownRuleId
	case errors.Is(err, rule.ErrInvalidSeverity), errors.Is(err, rule.ErrInvalidRuleEntry):
		return issue.InvalidSeverityId
	case errors.Is(err, context.DeadlineExceeded):
		return issue.LintTimeoutId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case issue.IsKind(err, issue.KindConfig):
		return issue.ConfigLoadFailedId
	default:
		return 0
	}
}

// reportFatal prints err and, in verbose mode, the catalog guidance for it.
// The returned ExitError carries no message since everything is already shown.
func reportFatal(w io.Writer, err error, verbose bool) error {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	if verbose {
		if entry := issue.Get(classifyLintError(err)); entry != nil {
			if rendered, renderErr := entry.Render(""); renderErr == nil {
				fmt.Fprint(w, rendered)
			}
		}
	}
	return &ExitError{Code: ExitFatal}
}
