// SPDX-License-Identifier: MPL-2.0

package rule

type (
	// Location points at the file or folder a diagnostic is about. Line and
	// Column are 1-based and zero when unknown.
	Location struct {
		Path   string `json:"path"`
		Line   int    `json:"line,omitempty"`
		Column int    `json:"column,omitempty"`
	}

	// Diagnostic is what a rule returns: a message about a location and the
	// fixes that would resolve it.
	Diagnostic struct {
		Message  string   `json:"message"`
		Fixes    []Fix    `json:"fixes,omitempty"`
		Location Location `json:"location"`
	}

	// FullDiagnostic is a Diagnostic stamped by the engine with the rule that
	// produced it, the resolved severity and a link to the rule description.
	// Severity is never SeverityOff.
	FullDiagnostic struct {
		Message            string   `json:"message"`
		RuleName           string   `json:"ruleName"`
		Severity           Severity `json:"severity"`
		Location           Location `json:"location"`
		Fixes              []Fix    `json:"fixes,omitempty"`
		RuleDescriptionURL string   `json:"ruleDescriptionUrl,omitempty"`
	}
)

// Stamp promotes d to a FullDiagnostic.
func (d Diagnostic) Stamp(ruleName string, severity Severity, descriptionURL string) FullDiagnostic {
	return FullDiagnostic{
		Message:            d.Message,
		RuleName:           ruleName,
		Severity:           severity,
		Location:           d.Location,
		Fixes:              d.Fixes,
		RuleDescriptionURL: descriptionURL,
	}
}

// At is a shorthand for a Diagnostic without fixes about path.
func At(path, message string, fixes ...Fix) Diagnostic {
	return Diagnostic{
		Message:  message,
		Fixes:    fixes,
		Location: Location{Path: path},
	}
}
