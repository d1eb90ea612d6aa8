package cbcr

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Validate applies the regulation's semantic rules to the typed
// records of one submission. Validation is total and collecting: it
// never stops at the first problem, so the caller can show the whole
// remediation list in one pass. Downstream mapping runs only when the
// combined finding set carries no error severity.
func Validate(records map[string][]Record) []Finding {
	var findings []Finding

	// Country codes declared in the Overview sheet; Subsidiaries rows
	// must not reference a jurisdiction outside this set.
	overviewCodes := make(map[string]bool)
	overviewKey := jurisdictionKeyField(schema.sheet(SheetOverview))
	for _, rec := range records[SheetOverview] {
		if rec.Has(overviewKey.Name) {
			overviewCodes[rec.Text(overviewKey.Name)] = true
		}
	}

	for i := range Sheets() {
		sheet := &Sheets()[i]
		subsKey := jurisdictionKeyField(sheet)

		for _, rec := range records[sheet.Name] {
			for j := range sheet.Fields {
				field := &sheet.Fields[j]
				findings = append(findings, validateField(&rec, field)...)
			}

			// Cross-sheet rule: orphaned jurisdiction references
			if sheet.Name == SheetSubsidiaries && rec.Has(subsKey.Name) {
				code := rec.Text(subsKey.Name)
				if !overviewCodes[code] {
					findings = append(findings, Finding{
						Severity: SeverityError,
						Sheet:    sheet.Name,
						Row:      rec.Row,
						Field:    subsKey.Name,
						Code:     CodeOrphanJurisdiction,
						Message:  fmt.Sprintf("jurisdiction %q does not appear in the %s sheet", code, SheetOverview),
					})
				}
			}
		}
	}

	return findings
}

func validateField(rec *Record, field *FieldSpec) []Finding {
	var findings []Finding

	if !rec.Has(field.Name) {
		// A field dropped by a type mismatch already has a structural
		// finding; do not report it missing as well.
		if field.Required && !rec.Invalid(field.Name) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Sheet:    rec.Sheet,
				Row:      rec.Row,
				Field:    field.Name,
				Code:     CodeRequiredMissing,
				Message:  fmt.Sprintf("required field %q is missing", field.Column),
			})
		}
		return findings
	}

	if field.Type == TypeEnum {
		if msg := validateDomain(rec.Text(field.Name), field); msg != "" {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Sheet:    rec.Sheet,
				Row:      rec.Row,
				Field:    field.Name,
				Code:     CodeDomainViolation,
				Message:  msg,
			})
		}
	}

	// Sign convention: amounts are non-negative unless the schema
	// declares a negative convention for the field. The convention is
	// declared, never inferred from the value.
	if field.Numeric() && !field.AllowNegative && rec.Number(field.Name) < 0 {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Sheet:    rec.Sheet,
			Row:      rec.Row,
			Field:    field.Name,
			Code:     CodeAmountSignInvalid,
			Message:  fmt.Sprintf("%q must not be negative (got %s)", field.Column, rec.Text(field.Name)),
		})
	}

	return findings
}

// validateDomain checks an enum value against its declared domain.
// Returns an error message, or empty string if the value is allowed.
func validateDomain(value string, field *FieldSpec) string {
	if len(field.Domain) > 0 {
		for _, allowed := range field.Domain {
			if strings.EqualFold(value, allowed) {
				return ""
			}
		}
		return fmt.Sprintf("value %q is not one of the allowed values for %q", value, field.Column)
	}

	switch field.DomainKind {
	case "iso3166":
		// Two uppercase letters and a well-formed region. User-assigned
		// codes such as XK or ZZ are well-formed and pass here; whether
		// they exist in the Overview sheet is the orphan rule's job.
		if len(value) != 2 || value != strings.ToUpper(value) {
			return fmt.Sprintf("value %q is not a two-letter country code", value)
		}
		if _, err := language.ParseRegion(value); err != nil {
			return fmt.Sprintf("value %q is not a valid country code", value)
		}
	case "iso4217":
		if _, err := currency.ParseISO(value); err != nil {
			return fmt.Sprintf("value %q is not a valid ISO 4217 currency code", value)
		}
	}
	return ""
}
