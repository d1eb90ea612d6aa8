package cbcr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultEntityScheme identifies reporting entities when the caller
// supplies no scheme of its own.
const DefaultEntityScheme = "http://www.company-registry.eu"

// ErrNoFacts rejects conversions that would emit a document with no
// tagged facts. An empty shell is not a compliant report.
var ErrNoFacts = errors.New("conversion produced no facts")

// Options tunes one conversion request
type Options struct {
	// EntityScheme overrides DefaultEntityScheme as the identifier
	// scheme on every context.
	EntityScheme string
}

// Result is the outcome of one conversion. Findings are always
// populated; Document is empty when error-severity findings blocked
// assembly.
type Result struct {
	Document  string
	Findings  []Finding
	Facts     []Fact
	Resources *Resources
	Meta      DocumentMeta
}

// Blocked reports whether error findings prevented document assembly
func (r *Result) Blocked() bool {
	return HasErrors(r.Findings)
}

// Convert runs the full pipeline on one submission's cell grids:
// read, validate, map, build contexts, assemble. The finding set is
// returned regardless of success so the uploader sees the complete
// remediation list. A non-nil error means an internal failure, not a
// fixable input problem.
func Convert(grids map[string]CellGrid, opts Options) (*Result, error) {
	records, findings := ReadSheets(grids)
	findings = append(findings, Validate(records)...)

	result := &Result{Findings: findings}
	if HasErrors(findings) {
		return result, nil
	}

	facts := MapFacts(records)
	if len(facts) == 0 {
		return result, ErrNoFacts
	}

	meta := buildMeta(records, opts)
	result.Meta = meta

	facts, resources, err := BuildResources(facts, meta)
	if err != nil {
		return result, fmt.Errorf("failed to build contexts: %w", err)
	}

	document, err := Assemble(facts, resources, meta)
	if err != nil {
		return result, fmt.Errorf("failed to assemble document: %w", err)
	}

	result.Document = document
	result.Facts = facts
	result.Resources = resources
	return result, nil
}

// buildMeta derives the entity, period and currency every context
// shares from the General Information record.
func buildMeta(records map[string][]Record, opts Options) DocumentMeta {
	scheme := opts.EntityScheme
	if scheme == "" {
		scheme = DefaultEntityScheme
	}

	meta := DocumentMeta{EntityScheme: scheme}
	general := records[SheetGeneral]
	if len(general) == 0 {
		return meta
	}
	rec := general[0]

	meta.EntityName = rec.Text("parent_name")
	meta.PeriodStart = rec.Text("fy_start")
	meta.PeriodEnd = rec.Text("fy_end")
	meta.Currency = rec.Text("reporting_currency")

	// Deterministic identifier: the same parent name always yields the
	// same id, which keeps repeated conversions byte-identical.
	meta.EntityID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(scheme+"/"+meta.EntityName)).String()

	return meta
}
