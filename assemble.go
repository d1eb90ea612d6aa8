package cbcr

import (
	"fmt"
	"strings"
)

// Typed dimension carrying the jurisdiction scenario of per-country
// contexts. The taxonomy has no enumerated member per country, so the
// code travels as a typed member value.
const (
	jurisdictionDimension = "cbcr:TaxJurisdictionAxis"
	jurisdictionElement   = "cbcr:JurisdictionCode"
)

// AssemblyError reports an internal consistency failure during
// document assembly (a fact referencing a context or unit that is not
// in the document). This is a pipeline defect, not a user input
// problem, and aborts the whole request.
type AssemblyError struct {
	Fact   string
	Ref    string
	Detail string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly failed: fact %s references %s: %s", e.Fact, e.Ref, e.Detail)
}

// Assemble renders facts, contexts and units into a single XHTML
// document with embedded inline XBRL tags. Serialization is
// deterministic: identical input yields byte-identical output.
func Assemble(facts []Fact, res *Resources, meta DocumentMeta) (string, error) {
	if err := checkReferences(facts, res); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(4096)

	writePrologue(&b, meta)
	writeHeader(&b, facts, res)
	writeGeneralSection(&b, facts)
	writeTableSection(&b, facts, SheetOverview, "Section 2: Overview of Information on a Country-by-Country Basis")
	writeTableSection(&b, facts, SheetSubsidiaries, "Section 3: List of Subsidiaries and Activities")
	writeOmittedSection(&b, facts)
	writeDiscrepanciesSection(&b, facts)
	writeEpilogue(&b)

	return b.String(), nil
}

// checkReferences verifies that every fact points at a context (and,
// when numeric, a unit) present in the same document.
func checkReferences(facts []Fact, res *Resources) error {
	contextIDs := make(map[string]bool, len(res.Contexts))
	for _, ctx := range res.Contexts {
		contextIDs[ctx.ID] = true
	}
	unitIDs := make(map[string]bool, len(res.Units))
	for _, u := range res.Units {
		unitIDs[u.ID] = true
	}

	for _, f := range facts {
		if !contextIDs[f.ContextID] {
			return &AssemblyError{Fact: f.Concept, Ref: "context", Detail: fmt.Sprintf("id %q not in document", f.ContextID)}
		}
		if f.Numeric && !unitIDs[f.UnitID] {
			return &AssemblyError{Fact: f.Concept, Ref: "unit", Detail: fmt.Sprintf("id %q not in document", f.UnitID)}
		}
	}
	return nil
}

func writePrologue(b *strings.Builder, meta DocumentMeta) {
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">` + "\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml"` + "\n")
	b.WriteString(`      xmlns:ix="http://www.xbrl.org/2013/inlineXBRL"` + "\n")
	b.WriteString(`      xmlns:ixt="http://www.xbrl.org/inlineXBRL/transformation/2020-02-12"` + "\n")
	b.WriteString(`      xmlns:link="http://www.xbrl.org/2003/linkbase"` + "\n")
	b.WriteString(`      xmlns:xlink="http://www.w3.org/1999/xlink"` + "\n")
	b.WriteString(`      xmlns:xbrli="http://www.xbrl.org/2003/instance"` + "\n")
	b.WriteString(`      xmlns:xbrldi="http://xbrl.org/2006/xbrldi"` + "\n")
	b.WriteString(`      xmlns:iso4217="http://www.xbrl.org/2003/iso4217"` + "\n")
	b.WriteString(fmt.Sprintf(`      xmlns:cbcr=%q>`+"\n", TaxonomyNamespace()))
	b.WriteString("<head>\n")
	b.WriteString(`<meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />` + "\n")
	b.WriteString(fmt.Sprintf("<title>Country-by-Country Report - %s</title>\n", esc(meta.EntityName)))
	b.WriteString("</head>\n<body>\n")
}

// writeHeader emits the non-displayed ix:header with the hidden facts,
// the taxonomy reference and the context/unit resources.
func writeHeader(b *strings.Builder, facts []Fact, res *Resources) {
	b.WriteString(`<div style="display:none">` + "\n<ix:header>\n")

	var hidden []Fact
	for _, f := range facts {
		if f.Hidden {
			hidden = append(hidden, f)
		}
	}
	if len(hidden) > 0 {
		b.WriteString("<ix:hidden>\n")
		for _, f := range hidden {
			writeInlineFact(b, f)
			b.WriteString("\n")
		}
		b.WriteString("</ix:hidden>\n")
	}

	b.WriteString("<ix:references>\n")
	b.WriteString(fmt.Sprintf(`<link:schemaRef xlink:type="simple" xlink:href=%q />`+"\n", TaxonomyNamespace()+"/ifrs-cbcr.xsd"))
	b.WriteString("</ix:references>\n")

	b.WriteString("<ix:resources>\n")
	for _, ctx := range res.Contexts {
		writeContext(b, ctx)
	}
	for _, u := range res.Units {
		b.WriteString(fmt.Sprintf("<xbrli:unit id=%q><xbrli:measure>%s</xbrli:measure></xbrli:unit>\n", u.ID, esc(u.Measure)))
	}
	b.WriteString("</ix:resources>\n</ix:header>\n</div>\n")

	b.WriteString("<h1>Country-by-Country Report</h1>\n")
}

func writeContext(b *strings.Builder, ctx Context) {
	b.WriteString(fmt.Sprintf("<xbrli:context id=%q>\n", ctx.ID))
	b.WriteString(fmt.Sprintf("<xbrli:entity><xbrli:identifier scheme=%q>%s</xbrli:identifier></xbrli:entity>\n",
		ctx.EntityScheme, esc(ctx.EntityID)))
	b.WriteString(fmt.Sprintf("<xbrli:period><xbrli:startDate>%s</xbrli:startDate><xbrli:endDate>%s</xbrli:endDate></xbrli:period>\n",
		ctx.PeriodStart, ctx.PeriodEnd))
	if ctx.Jurisdiction != "" {
		b.WriteString(fmt.Sprintf("<xbrli:scenario><xbrldi:typedMember dimension=%q><%s>%s</%s></xbrldi:typedMember></xbrli:scenario>\n",
			jurisdictionDimension, jurisdictionElement, esc(ctx.Jurisdiction), jurisdictionElement))
	}
	b.WriteString("</xbrli:context>\n")
}

// writeGeneralSection renders the General Information key/value table.
// Hidden facts show their display text here; the tagged value lives in
// ix:hidden.
func writeGeneralSection(b *strings.Builder, facts []Fact) {
	b.WriteString("<h2>Section 1: General Information</h2>\n<table border=\"1\">\n")

	byField := make(map[string]Fact)
	for _, f := range facts {
		if f.Sheet == SheetGeneral {
			byField[f.Field] = f
		}
	}

	for _, field := range FieldsFor(SheetGeneral) {
		if field.Name == "material_discrepancies" {
			continue // rendered in section 5
		}
		b.WriteString(fmt.Sprintf("<tr><td>%s:</td><td>", esc(field.Column)))
		if f, ok := byField[field.Name]; ok {
			if f.Hidden {
				b.WriteString(esc(displayText(f, &field)))
			} else {
				writeInlineFact(b, f)
			}
		}
		b.WriteString("</td></tr>\n")
	}

	b.WriteString("</table>\n")
}

// writeTableSection renders one jurisdiction sheet as a table whose
// cells wrap their facts in inline tags.
func writeTableSection(b *strings.Builder, facts []Fact, sheetName, heading string) {
	fields := FieldsFor(sheetName)

	b.WriteString(fmt.Sprintf("<h2>%s</h2>\n<table border=\"1\">\n<thead>\n<tr>", esc(heading)))
	for _, field := range fields {
		b.WriteString(fmt.Sprintf("<th>%s</th>", esc(field.Column)))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")

	var rowOrder []int
	byRow := make(map[int]map[string]Fact)
	for _, f := range facts {
		if f.Sheet != sheetName {
			continue
		}
		if _, ok := byRow[f.Row]; !ok {
			byRow[f.Row] = make(map[string]Fact)
			rowOrder = append(rowOrder, f.Row)
		}
		byRow[f.Row][f.Field] = f
	}

	for _, row := range rowOrder {
		b.WriteString("<tr>")
		for _, field := range fields {
			b.WriteString("<td>")
			if f, ok := byRow[row][field.Name]; ok && !f.Hidden {
				writeInlineFact(b, f)
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}

	b.WriteString("</tbody>\n</table>\n")
}

func writeOmittedSection(b *strings.Builder, facts []Fact) {
	b.WriteString("<h2>Section 4: Omitted Information</h2>\n<div>\n<p><strong>Information Omitted:</strong></p>\n")
	for _, f := range facts {
		if f.Sheet == SheetOmitted {
			b.WriteString("<p>")
			writeInlineFact(b, f)
			b.WriteString("</p>\n")
		}
	}
	b.WriteString("</div>\n")
}

func writeDiscrepanciesSection(b *strings.Builder, facts []Fact) {
	b.WriteString("<h2>Section 5: Explanations for Material Discrepancies</h2>\n<div>\n")
	for _, f := range facts {
		if f.Field == "material_discrepancies" {
			b.WriteString("<p>")
			writeInlineFact(b, f)
			b.WriteString("</p>\n")
		}
	}
	b.WriteString("</div>\n")
}

func writeEpilogue(b *strings.Builder) {
	b.WriteString("<hr />\n")
	b.WriteString("<p><em>This report was generated in compliance with Commission Implementing Regulation (EU) 2024/2952.</em></p>\n")
	b.WriteString("</body>\n</html>\n")
}

// writeInlineFact emits one ix:nonFraction or ix:nonNumeric element
func writeInlineFact(b *strings.Builder, f Fact) {
	if f.Numeric {
		b.WriteString(fmt.Sprintf(`<ix:nonFraction name=%q contextRef=%q unitRef=%q decimals=%q`,
			f.Concept, f.ContextID, f.UnitID, f.Decimals))
		if f.Scale != 0 {
			b.WriteString(fmt.Sprintf(` scale="%d"`, f.Scale))
		}
		if f.Sign < 0 {
			b.WriteString(` sign="-"`)
		}
		b.WriteString(">")
		b.WriteString(esc(f.Value))
		b.WriteString("</ix:nonFraction>")
		return
	}

	b.WriteString(fmt.Sprintf(`<ix:nonNumeric name=%q contextRef=%q>`, f.Concept, f.ContextID))
	b.WriteString(esc(f.Value))
	b.WriteString("</ix:nonNumeric>")
}

// displayText is the human-readable rendering of a hidden fact
func displayText(f Fact, field *FieldSpec) string {
	if field.Type == TypeBoolean {
		if f.Value == "true" {
			return "Yes"
		}
		return "No"
	}
	return f.Value
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string {
	return xmlEscaper.Replace(s)
}
