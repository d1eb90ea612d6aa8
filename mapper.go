package cbcr

import "strings"

// Fact is one tagged data point derived from a validated record.
// Never mutated after creation; ContextID/UnitID are assigned by the
// context builder on annotated copies.
type Fact struct {
	Concept  string
	Value    string // canonical lexical form, non-negative for numeric facts
	Numeric  bool
	Unit     UnitKind
	Scale    int
	Sign     int    // +1 or -1; -1 means the tagged value is negated
	Decimals string // "0", "INF", ...; empty for non-numeric facts

	// Provenance, drives visible rendering and context derivation
	Sheet        string
	Field        string
	Row          int
	Jurisdiction string // country code for jurisdiction-scoped facts
	Hidden       bool

	ContextID string
	UnitID    string
}

// Default explanatory facts emitted when the submission leaves the
// corresponding disclosures empty (the regulation expects an explicit
// statement either way).
const (
	defaultOmittedText       = "No information omitted"
	defaultDiscrepanciesText = "No material discrepancies identified"
)

// MapFacts converts validated records into facts, one per bound,
// non-absent field. Emission order is stable: schema sheet order, then
// row order, then field declaration order. Stable order is what makes
// repeated conversions of the same input byte-identical.
func MapFacts(records map[string][]Record) []Fact {
	var facts []Fact

	for i := range Sheets() {
		sheet := &Sheets()[i]
		key := jurisdictionKeyField(sheet)

		for _, rec := range records[sheet.Name] {
			jurisdiction := ""
			if key != nil {
				jurisdiction = rec.Text(key.Name)
			}

			for j := range sheet.Fields {
				field := &sheet.Fields[j]
				if field.Concept == "" || !rec.Has(field.Name) {
					continue
				}
				facts = append(facts, newFact(field, rec.values[field.Name], rec.Row, jurisdiction))
			}
		}
	}

	facts = appendDefaultFacts(facts)
	return facts
}

func newFact(field *FieldSpec, value Value, row int, jurisdiction string) Fact {
	fact := Fact{
		Concept: field.Concept,
		Value:   value.Text,
		Sheet:   field.Sheet,
		Field:   field.Name,
		Row:     row,
		Hidden:  field.Hidden,
		Sign:    1,
	}
	if jurisdictionScoped(field) {
		fact.Jurisdiction = jurisdiction
	}

	if field.Numeric() {
		fact.Numeric = true
		fact.Unit = field.Unit
		fact.Scale = 0 // whole reporting units per the taxonomy convention
		fact.Decimals = "0"
		// iXBRL carries magnitudes as non-negative lexical values with
		// the polarity on the sign attribute.
		if value.Number < 0 {
			fact.Sign = -1
			fact.Value = strings.TrimPrefix(value.Text, "-")
		}
	}

	return fact
}

// jurisdictionScoped reports whether a field's facts belong in the
// per-jurisdiction context of their row rather than the entity-level
// context. Every fact on a jurisdiction sheet is scoped to its row.
func jurisdictionScoped(field *FieldSpec) bool {
	return field.Sheet == SheetOverview || field.Sheet == SheetSubsidiaries
}

// appendDefaultFacts supplies the explicit "nothing to report"
// disclosures when the submission carries none.
func appendDefaultFacts(facts []Fact) []Fact {
	omittedConcept := ConceptFor("omitted_description")
	discrepanciesConcept := ConceptFor("material_discrepancies")

	hasOmitted, hasDiscrepancies := false, false
	for _, f := range facts {
		switch f.Concept {
		case omittedConcept:
			hasOmitted = true
		case discrepanciesConcept:
			hasDiscrepancies = true
		}
	}

	if !hasOmitted {
		facts = append(facts, Fact{
			Concept: omittedConcept,
			Value:   defaultOmittedText,
			Sheet:   SheetOmitted,
			Field:   "omitted_description",
			Sign:    1,
		})
	}
	if !hasDiscrepancies {
		facts = append(facts, Fact{
			Concept: discrepanciesConcept,
			Value:   defaultDiscrepanciesText,
			Sheet:   SheetGeneral,
			Field:   "material_discrepancies",
			Sign:    1,
		})
	}

	return facts
}
