package cbcr

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParsedDocument holds the facts, contexts and units re-extracted from
// an assembled document. Used to verify internal consistency of
// produced output (every fact resolving to a context and unit in the
// same document).
type ParsedDocument struct {
	Contexts []ParsedContext
	Units    []ParsedUnit
	Facts    []ParsedFact
}

// ParsedContext mirrors one xbrli:context element
type ParsedContext struct {
	ID     string `xml:"id,attr"`
	Entity struct {
		Identifier struct {
			Scheme string `xml:"scheme,attr"`
			Value  string `xml:",chardata"`
		} `xml:"identifier"`
	} `xml:"entity"`
	Period struct {
		StartDate string `xml:"startDate"`
		EndDate   string `xml:"endDate"`
	} `xml:"period"`
	Scenario struct {
		TypedMember struct {
			Dimension    string `xml:"dimension,attr"`
			Jurisdiction string `xml:"JurisdictionCode"`
		} `xml:"typedMember"`
	} `xml:"scenario"`
}

// ParsedUnit mirrors one xbrli:unit element
type ParsedUnit struct {
	ID      string `xml:"id,attr"`
	Measure string `xml:"measure"`
}

// ParsedFact is one ix:nonFraction or ix:nonNumeric element
type ParsedFact struct {
	Concept    string
	Value      string
	ContextRef string
	UnitRef    string
	Decimals   string
	Scale      string
	Sign       string
	Numeric    bool
}

// ParseDocument extracts the iXBRL content of an assembled XHTML
// document. Facts inside ix:hidden are extracted like any other.
func ParseDocument(data []byte) (*ParsedDocument, error) {
	doc := &ParsedDocument{}

	if err := extractResources(doc, data); err != nil {
		return nil, fmt.Errorf("failed to extract resources: %w", err)
	}
	if err := extractFacts(doc, data); err != nil {
		return nil, fmt.Errorf("failed to extract facts: %w", err)
	}

	return doc, nil
}

// extractResources collects contexts and units from the ix:resources
// section
func extractResources(doc *ParsedDocument, data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	inResources := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch elem := token.(type) {
		case xml.StartElement:
			if elem.Name.Local == "resources" {
				inResources = true
				continue
			}
			if !inResources {
				continue
			}

			if elem.Name.Local == "context" {
				var ctx ParsedContext
				if err := decoder.DecodeElement(&ctx, &elem); err != nil {
					return fmt.Errorf("malformed context: %w", err)
				}
				doc.Contexts = append(doc.Contexts, ctx)
			}
			if elem.Name.Local == "unit" {
				var unit ParsedUnit
				if err := decoder.DecodeElement(&unit, &elem); err != nil {
					return fmt.Errorf("malformed unit: %w", err)
				}
				doc.Units = append(doc.Units, unit)
			}

		case xml.EndElement:
			if elem.Name.Local == "resources" {
				inResources = false
			}
		}
	}

	return nil
}

// extractFacts collects ix:nonFraction and ix:nonNumeric elements
func extractFacts(doc *ParsedDocument, data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		elem, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if elem.Name.Local != "nonFraction" && elem.Name.Local != "nonNumeric" {
			continue
		}

		fact := ParsedFact{
			Concept:    attrValue(elem.Attr, "name"),
			ContextRef: attrValue(elem.Attr, "contextRef"),
			UnitRef:    attrValue(elem.Attr, "unitRef"),
			Decimals:   attrValue(elem.Attr, "decimals"),
			Scale:      attrValue(elem.Attr, "scale"),
			Sign:       attrValue(elem.Attr, "sign"),
			Numeric:    elem.Name.Local == "nonFraction",
		}

		var value string
		if err := decoder.DecodeElement(&value, &elem); err != nil {
			return fmt.Errorf("malformed fact element: %w", err)
		}
		fact.Value = strings.TrimSpace(value)

		doc.Facts = append(doc.Facts, fact)
	}

	return nil
}

// VerifyReferences re-checks the round-trip property on a produced
// document: every fact must resolve to a context (and, when numeric, a
// unit) defined in the same document.
func (d *ParsedDocument) VerifyReferences() error {
	contexts := make(map[string]bool, len(d.Contexts))
	for _, ctx := range d.Contexts {
		contexts[ctx.ID] = true
	}
	units := make(map[string]bool, len(d.Units))
	for _, u := range d.Units {
		units[u.ID] = true
	}

	for _, f := range d.Facts {
		if !contexts[f.ContextRef] {
			return fmt.Errorf("fact %s references undefined context %q", f.Concept, f.ContextRef)
		}
		if f.Numeric && !units[f.UnitRef] {
			return fmt.Errorf("fact %s references undefined unit %q", f.Concept, f.UnitRef)
		}
	}
	return nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
