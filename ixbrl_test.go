package cbcr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const danglingFactDoc = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"
      xmlns:ix="http://www.xbrl.org/2013/inlineXBRL"
      xmlns:xbrli="http://www.xbrl.org/2003/instance">
<body>
<div style="display:none">
<ix:header>
<ix:resources>
<xbrli:context id="ctx-1">
<xbrli:entity><xbrli:identifier scheme="http://www.company-registry.eu">abc</xbrli:identifier></xbrli:entity>
<xbrli:period><xbrli:startDate>2024-01-01</xbrli:startDate><xbrli:endDate>2024-12-31</xbrli:endDate></xbrli:period>
</xbrli:context>
</ix:resources>
</ix:header>
</div>
<p><ix:nonNumeric name="cbcr:TaxJurisdiction" contextRef="ctx-9">France</ix:nonNumeric></p>
</body>
</html>
`

func TestParseDocumentExtractsResources(t *testing.T) {
	parsed, err := ParseDocument([]byte(danglingFactDoc))
	require.NoError(t, err)

	require.Len(t, parsed.Contexts, 1)
	assert.Equal(t, "ctx-1", parsed.Contexts[0].ID)
	assert.Equal(t, "abc", parsed.Contexts[0].Entity.Identifier.Value)
	assert.Equal(t, "2024-01-01", parsed.Contexts[0].Period.StartDate)

	require.Len(t, parsed.Facts, 1)
	assert.Equal(t, "cbcr:TaxJurisdiction", parsed.Facts[0].Concept)
	assert.Equal(t, "France", parsed.Facts[0].Value)
	assert.False(t, parsed.Facts[0].Numeric)
}

func TestVerifyReferencesDanglingContext(t *testing.T) {
	parsed, err := ParseDocument([]byte(danglingFactDoc))
	require.NoError(t, err)

	err = parsed.VerifyReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undefined context "ctx-9"`)
}

func TestVerifyReferencesDanglingUnit(t *testing.T) {
	doc := &ParsedDocument{
		Contexts: []ParsedContext{{ID: "ctx-1"}},
		Facts: []ParsedFact{
			{Concept: "cbcr:Revenues", ContextRef: "ctx-1", UnitRef: "unit-9", Numeric: true},
		},
	}

	err := doc.VerifyReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undefined unit "unit-9"`)
}

func TestParseDocumentRejectsMalformedXML(t *testing.T) {
	_, err := ParseDocument([]byte("<html><ix:resources><xbrli:context id='x'></html>"))
	require.Error(t, err)
}
