package cbcr

import "fmt"

// Context binds facts to a reporting entity, period and optional
// jurisdiction scenario. Deduplicated by structural equality: facts
// sharing entity, period and jurisdiction share one context.
type Context struct {
	ID           string
	EntityScheme string
	EntityID     string
	PeriodStart  string
	PeriodEnd    string
	Jurisdiction string // empty for the entity-level context
}

// Unit declares the measurement unit of numeric facts, deduplicated by
// measure.
type Unit struct {
	ID      string
	Measure string // e.g. "iso4217:EUR", "xbrli:pure"
}

// Resources is the deduplicated context/unit set referenced by a
// document's facts.
type Resources struct {
	Contexts []Context
	Units    []Unit
}

// DocumentMeta carries the submission-level values every context and
// unit derives from.
type DocumentMeta struct {
	EntityName   string
	EntityID     string
	EntityScheme string
	PeriodStart  string
	PeriodEnd    string
	Currency     string // ISO 4217 code
}

// MissingPeriodError reports that General Information supplied no
// reporting period; a period is mandatory for every context.
type MissingPeriodError struct{}

func (e *MissingPeriodError) Error() string {
	return "cannot build contexts: General Information supplies no reporting period"
}

// BuildResources derives the contexts and units referenced by the
// facts, deduplicating by value and assigning ids in first-seen order.
// Returns annotated fact copies; the input slice is not modified.
func BuildResources(facts []Fact, meta DocumentMeta) ([]Fact, *Resources, error) {
	if meta.PeriodStart == "" || meta.PeriodEnd == "" {
		return nil, nil, &MissingPeriodError{}
	}

	res := &Resources{}
	contextIDs := make(map[string]string) // jurisdiction -> context id
	unitIDs := make(map[string]string)    // measure -> unit id

	annotated := make([]Fact, len(facts))
	for i, fact := range facts {
		ctxID, ok := contextIDs[fact.Jurisdiction]
		if !ok {
			ctxID = fmt.Sprintf("ctx-%d", len(res.Contexts)+1)
			contextIDs[fact.Jurisdiction] = ctxID
			res.Contexts = append(res.Contexts, Context{
				ID:           ctxID,
				EntityScheme: meta.EntityScheme,
				EntityID:     meta.EntityID,
				PeriodStart:  meta.PeriodStart,
				PeriodEnd:    meta.PeriodEnd,
				Jurisdiction: fact.Jurisdiction,
			})
		}
		fact.ContextID = ctxID

		if fact.Numeric {
			measure := unitMeasure(fact.Unit, meta.Currency)
			unitID, ok := unitIDs[measure]
			if !ok {
				unitID = fmt.Sprintf("unit-%d", len(res.Units)+1)
				unitIDs[measure] = unitID
				res.Units = append(res.Units, Unit{ID: unitID, Measure: measure})
			}
			fact.UnitID = unitID
		}

		annotated[i] = fact
	}

	return annotated, res, nil
}

func unitMeasure(kind UnitKind, currencyCode string) string {
	switch kind {
	case UnitCurrency:
		return "iso4217:" + currencyCode
	default:
		return "xbrli:pure"
	}
}
