package cbcr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assembleValid runs the pipeline up to assembly on the baseline fixture
func assembleValid(t *testing.T) (string, []Fact, *Resources, DocumentMeta) {
	t.Helper()

	records := readValid(t)
	require.Empty(t, Validate(records))

	meta := buildMeta(records, Options{})
	facts, res, err := BuildResources(MapFacts(records), meta)
	require.NoError(t, err)

	doc, err := Assemble(facts, res, meta)
	require.NoError(t, err)
	return doc, facts, res, meta
}

func TestAssembleDocumentShape(t *testing.T) {
	doc, _, _, _ := assembleValid(t)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, "<!DOCTYPE html")
	assert.Contains(t, doc, `xmlns:ix="http://www.xbrl.org/2013/inlineXBRL"`)
	assert.Contains(t, doc, `xmlns:cbcr="http://xbrl.ifrs.org/taxonomy/2024-03-14/ifrs-cbcr"`)
	assert.Contains(t, doc, "<title>Country-by-Country Report - Exemplar Group SE</title>")

	// All five visible sections are present in order
	sections := []string{
		"Section 1: General Information",
		"Section 2: Overview of Information on a Country-by-Country Basis",
		"Section 3: List of Subsidiaries and Activities",
		"Section 4: Omitted Information",
		"Section 5: Explanations for Material Discrepancies",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(doc, s)
		require.Greaterf(t, idx, last, "section %q out of order or missing", s)
		last = idx
	}

	assert.Contains(t, doc, "Commission Implementing Regulation (EU) 2024/2952")
}

func TestAssembleHeaderResources(t *testing.T) {
	doc, _, res, meta := assembleValid(t)

	assert.Contains(t, doc, `<link:schemaRef xlink:type="simple" xlink:href="http://xbrl.ifrs.org/taxonomy/2024-03-14/ifrs-cbcr/ifrs-cbcr.xsd" />`)

	// Entity-level context has no scenario; the FR context carries the
	// typed jurisdiction member.
	require.Len(t, res.Contexts, 2)
	assert.Contains(t, doc, `<xbrli:context id="ctx-1">`)
	assert.Contains(t, doc, `<xbrli:context id="ctx-2">`)
	assert.Contains(t, doc,
		`<xbrli:scenario><xbrldi:typedMember dimension="cbcr:TaxJurisdictionAxis"><cbcr:JurisdictionCode>FR</cbcr:JurisdictionCode></xbrldi:typedMember></xbrli:scenario>`)
	assert.Equal(t, 1, strings.Count(doc, "<xbrli:scenario>"))

	assert.Contains(t, doc, `<xbrli:unit id="unit-1"><xbrli:measure>iso4217:EUR</xbrli:measure></xbrli:unit>`)
	assert.Contains(t, doc, `<xbrli:unit id="unit-2"><xbrli:measure>xbrli:pure</xbrli:measure></xbrli:unit>`)

	assert.Contains(t, doc, meta.EntityID)
	assert.Contains(t, doc, "<xbrli:startDate>2024-01-01</xbrli:startDate>")
	assert.Contains(t, doc, "<xbrli:endDate>2024-12-31</xbrli:endDate>")
}

func TestAssembleHiddenFacts(t *testing.T) {
	doc, _, _, _ := assembleValid(t)

	// The boolean disclosure is tagged in ix:hidden and rendered as text
	hiddenStart := strings.Index(doc, "<ix:hidden>")
	hiddenEnd := strings.Index(doc, "</ix:hidden>")
	require.Greater(t, hiddenEnd, hiddenStart)
	require.Greater(t, hiddenStart, -1)

	hidden := doc[hiddenStart:hiddenEnd]
	assert.Contains(t, hidden, "cbcr:ApplicationOfOptionToReportInAccordanceWithTaxationReportingInstructions")

	assert.Contains(t, doc, "<td>OECD Instructions Used:</td><td>Yes</td>")
}

func TestAssembleNumericFacts(t *testing.T) {
	doc, _, _, _ := assembleValid(t)

	assert.Contains(t, doc,
		`<ix:nonFraction name="cbcr:Revenues" contextRef="ctx-2" unitRef="unit-1" decimals="0">1250000</ix:nonFraction>`)
	assert.Contains(t, doc,
		`<ix:nonFraction name="cbcr:NumberOfEmployees" contextRef="ctx-2" unitRef="unit-2" decimals="0">42</ix:nonFraction>`)
	// Whole reporting units: no scale attribute at scale zero
	assert.NotContains(t, doc, "scale=")
}

func TestAssembleNegativeFactSign(t *testing.T) {
	grids := validGrids()
	grids[SheetOverview][1][3] = StringCell("-300000")

	records, findings := ReadSheets(grids)
	require.Empty(t, findings)
	require.Empty(t, Validate(records))

	meta := buildMeta(records, Options{})
	facts, res, err := BuildResources(MapFacts(records), meta)
	require.NoError(t, err)

	doc, err := Assemble(facts, res, meta)
	require.NoError(t, err)

	assert.Contains(t, doc,
		`<ix:nonFraction name="cbcr:ProfitLossBeforeTax" contextRef="ctx-2" unitRef="unit-1" decimals="0" sign="-">300000</ix:nonFraction>`)
}

func TestAssembleEscapesText(t *testing.T) {
	grids := validGrids()
	grids[SheetGeneral][0][1] = StringCell(`Smith & Jones <Holdings> "SE"`)

	records, findings := ReadSheets(grids)
	require.Empty(t, findings)

	meta := buildMeta(records, Options{})
	facts, res, err := BuildResources(MapFacts(records), meta)
	require.NoError(t, err)

	doc, err := Assemble(facts, res, meta)
	require.NoError(t, err)

	assert.Contains(t, doc, "Smith &amp; Jones &lt;Holdings&gt; &quot;SE&quot;")
	assert.NotContains(t, doc, "Smith & Jones <Holdings>")
}

func TestAssembleDeterministic(t *testing.T) {
	first, _, _, _ := assembleValid(t)
	second, _, _, _ := assembleValid(t)
	assert.Equal(t, first, second)
}

func TestAssembleDanglingReferences(t *testing.T) {
	meta := testMeta()
	res := &Resources{
		Contexts: []Context{{ID: "ctx-1", EntityScheme: meta.EntityScheme, EntityID: meta.EntityID,
			PeriodStart: meta.PeriodStart, PeriodEnd: meta.PeriodEnd}},
		Units: []Unit{{ID: "unit-1", Measure: "iso4217:EUR"}},
	}

	t.Run("unknown context", func(t *testing.T) {
		facts := []Fact{{Concept: "cbcr:TaxJurisdiction", ContextID: "ctx-99"}}
		_, err := Assemble(facts, res, meta)
		var asmErr *AssemblyError
		require.ErrorAs(t, err, &asmErr)
		assert.Equal(t, "context", asmErr.Ref)
	})

	t.Run("unknown unit", func(t *testing.T) {
		facts := []Fact{{Concept: "cbcr:Revenues", Numeric: true, ContextID: "ctx-1", UnitID: "unit-99"}}
		_, err := Assemble(facts, res, meta)
		var asmErr *AssemblyError
		require.ErrorAs(t, err, &asmErr)
		assert.Equal(t, "unit", asmErr.Ref)
	})
}

func TestAssembledDocumentRoundTrips(t *testing.T) {
	doc, facts, res, _ := assembleValid(t)

	parsed, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, parsed.VerifyReferences())

	assert.Len(t, parsed.Contexts, len(res.Contexts))
	assert.Len(t, parsed.Units, len(res.Units))

	// Every fact comes back; visible facts once, the hidden fact only
	// from ix:hidden.
	assert.Len(t, parsed.Facts, len(facts))

	for _, ctx := range parsed.Contexts {
		if ctx.ID == "ctx-2" {
			assert.Equal(t, "FR", ctx.Scenario.TypedMember.Jurisdiction)
			assert.Equal(t, "cbcr:TaxJurisdictionAxis", ctx.Scenario.TypedMember.Dimension)
		}
	}
}
