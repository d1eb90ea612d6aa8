package cbcr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemaLoads(t *testing.T) {
	require.NotNil(t, schema)

	assert.Equal(t, "EU-2024-2952", SchemaVersion())
	assert.Equal(t, "cbcr", TaxonomyPrefix())
	assert.Contains(t, TaxonomyNamespace(), "ifrs-cbcr")

	var names []string
	for _, sheet := range Sheets() {
		names = append(names, sheet.Name)
	}
	assert.Equal(t, []string{SheetGeneral, SheetOverview, SheetSubsidiaries, SheetOmitted}, names)
}

func TestLoadSchemaRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{
			name:    "not json",
			json:    `{`,
			wantErr: "failed to parse schema JSON",
		},
		{
			name: "missing namespace",
			json: `{"prefix": "cbcr", "sheets": []}`,
			wantErr: "namespace and prefix",
		},
		{
			name: "duplicate field name",
			json: `{"namespace": "ns", "prefix": "cbcr", "sheets": [
				{"name": "A", "layout": "table", "fields": [
					{"name": "x", "column": "X", "type": "string"},
					{"name": "x", "column": "X2", "type": "string"}]}]}`,
			wantErr: `duplicate field name "x"`,
		},
		{
			name: "unknown layout",
			json: `{"namespace": "ns", "prefix": "cbcr", "sheets": [
				{"name": "A", "layout": "pivot", "fields": []}]}`,
			wantErr: "unknown layout",
		},
		{
			name: "numeric field without unit",
			json: `{"namespace": "ns", "prefix": "cbcr", "sheets": [
				{"name": "A", "layout": "table", "fields": [
					{"name": "x", "column": "X", "type": "decimal"}]}]}`,
			wantErr: "declares no unit",
		},
		{
			name: "unit on non-numeric field",
			json: `{"namespace": "ns", "prefix": "cbcr", "sheets": [
				{"name": "A", "layout": "table", "fields": [
					{"name": "x", "column": "X", "type": "string", "unit": "pure"}]}]}`,
			wantErr: "declares unit",
		},
		{
			name: "enum without domain",
			json: `{"namespace": "ns", "prefix": "cbcr", "sheets": [
				{"name": "A", "layout": "table", "fields": [
					{"name": "x", "column": "X", "type": "enum"}]}]}`,
			wantErr: "declares no domain",
		},
		{
			name: "concept outside taxonomy",
			json: `{"namespace": "ns", "prefix": "cbcr", "sheets": [
				{"name": "A", "layout": "table", "fields": [
					{"name": "x", "column": "X", "type": "string", "concept": "ifrs:Revenue"}]}]}`,
			wantErr: "outside the cbcr taxonomy",
		},
		{
			name: "missing required sheet",
			json: `{"namespace": "ns", "prefix": "cbcr", "sheets": [
				{"name": "General Information", "layout": "keyValue", "fields": []}]}`,
			wantErr: "missing required sheet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSchema([]byte(tt.json))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConceptFor(t *testing.T) {
	assert.Equal(t, "cbcr:Revenues", ConceptFor("ov_revenues"))
	assert.Equal(t, "cbcr:NumberOfEmployees", ConceptFor("ov_employees"))
	assert.Equal(t, "", ConceptFor("no_such_field"))
}

func TestFieldByName(t *testing.T) {
	f := FieldByName("ov_profit_before_tax")
	require.NotNil(t, f)
	assert.Equal(t, SheetOverview, f.Sheet)
	assert.True(t, f.AllowNegative)
	assert.True(t, f.Numeric())

	rev := FieldByName("ov_revenues")
	require.NotNil(t, rev)
	assert.False(t, rev.AllowNegative)

	assert.Nil(t, FieldByName("no_such_field"))
}

func TestJurisdictionKeyField(t *testing.T) {
	for _, name := range []string{SheetOverview, SheetSubsidiaries} {
		key := jurisdictionKeyField(schema.sheet(name))
		require.NotNil(t, key, name)
		assert.Equal(t, "iso3166", key.DomainKind)
	}
	assert.Nil(t, jurisdictionKeyField(schema.sheet(SheetGeneral)))
	assert.Nil(t, jurisdictionKeyField(nil))
}
