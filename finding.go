package cbcr

import "fmt"

// Severity of a validation finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding codes. Error-severity findings block document assembly.
const (
	CodeSheetMissing       = "SHEET_MISSING"
	CodeTypeMismatch       = "TYPE_MISMATCH"
	CodeRequiredMissing    = "REQUIRED_MISSING"
	CodeDomainViolation    = "DOMAIN_VIOLATION"
	CodeAmountSignInvalid  = "AMOUNT_SIGN_INVALID"
	CodeOrphanJurisdiction = "ORPHAN_JURISDICTION"
	CodeOmittedSheetAbsent = "OMITTED_SHEET_ABSENT"
)

// Finding is one structural or semantic problem found in a submission.
// The full ordered set is returned to the caller as the remediation list.
type Finding struct {
	Severity Severity
	Sheet    string
	Row      int // 1-based source row, 0 when not row-scoped
	Field    string
	Code     string
	Message  string
}

func (f Finding) String() string {
	loc := f.Sheet
	if f.Row > 0 {
		loc = fmt.Sprintf("%s row %d", f.Sheet, f.Row)
	}
	if f.Field != "" {
		loc = fmt.Sprintf("%s field %q", loc, f.Field)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", f.Severity, loc, f.Message, f.Code)
}

// HasErrors reports whether any finding has error severity
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity returns (errors, warnings)
func CountBySeverity(findings []Finding) (errors, warnings int) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
