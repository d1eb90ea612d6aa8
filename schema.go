package cbcr

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed cbcr_schema.json
var schemaJSON []byte

// Sheet names required in every submission
const (
	SheetGeneral      = "General Information"
	SheetOverview     = "Country-by-Country Overview"
	SheetSubsidiaries = "Subsidiaries and Activities"
	SheetOmitted      = "Omitted Information"
)

// DataType is the semantic type of a field's value
type DataType string

const (
	TypeString  DataType = "string"
	TypeDecimal DataType = "decimal"
	TypeInteger DataType = "integer"
	TypeEnum    DataType = "enum"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
)

// ContextRole says which context dimension a field contributes to
type ContextRole string

const (
	RoleNone         ContextRole = ""
	RoleEntity       ContextRole = "entity"
	RolePeriod       ContextRole = "period"
	RoleJurisdiction ContextRole = "jurisdiction"
)

// UnitKind selects the XBRL unit a numeric fact is measured in
type UnitKind string

const (
	UnitNone     UnitKind = ""
	UnitCurrency UnitKind = "currency" // reporting currency from General Information
	UnitPure     UnitKind = "pure"     // xbrli:pure (e.g. employee headcount)
)

// Layout describes how a sheet arranges its fields
type Layout string

const (
	LayoutTable    Layout = "table"    // header row, one record per data row
	LayoutKeyValue Layout = "keyValue" // label in column A, value in column B
)

// FieldSpec declares one field of one sheet: where it is read from,
// how its value is typed and validated, and which taxonomy concept it
// binds to (empty concept = not tagged).
type FieldSpec struct {
	Name          string      `json:"name"`
	Column        string      `json:"column"` // header label (table) or row label (keyValue)
	Type          DataType    `json:"type"`
	Required      bool        `json:"required"`
	Domain        []string    `json:"domain,omitempty"`
	DomainKind    string      `json:"domainKind,omitempty"` // "iso3166" or "iso4217"
	Concept       string      `json:"concept,omitempty"`
	Role          ContextRole `json:"role,omitempty"`
	Unit          UnitKind    `json:"unit,omitempty"`
	AllowNegative bool        `json:"allowNegative,omitempty"`
	Hidden        bool        `json:"hidden,omitempty"`

	Sheet string `json:"-"` // filled on load
}

// Numeric reports whether the field produces a numeric fact
func (f *FieldSpec) Numeric() bool {
	return f.Type == TypeDecimal || f.Type == TypeInteger
}

// SheetSpec declares the ordered fields of one sheet
type SheetSpec struct {
	Name   string      `json:"name"`
	Layout Layout      `json:"layout"`
	Fields []FieldSpec `json:"fields"`
}

// Schema is the full declarative field table for one regulation revision
type Schema struct {
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Namespace   string      `json:"namespace"`
	Prefix      string      `json:"prefix"`
	Sheets      []SheetSpec `json:"sheets"`

	byField map[string]*FieldSpec
}

var schema *Schema

func init() {
	var err error
	schema, err = loadSchema(schemaJSON)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded CbCR schema: %v", err))
	}
}

// loadSchema parses the embedded JSON and runs the startup self-check
func loadSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	s.byField = make(map[string]*FieldSpec)
	for i := range s.Sheets {
		sheet := &s.Sheets[i]
		for j := range sheet.Fields {
			field := &sheet.Fields[j]
			field.Sheet = sheet.Name
			if _, dup := s.byField[field.Name]; dup {
				return nil, fmt.Errorf("duplicate field name %q", field.Name)
			}
			s.byField[field.Name] = field
		}
	}

	if err := s.selfCheck(); err != nil {
		return nil, err
	}
	return &s, nil
}

// selfCheck catches misconfiguration before any conversion runs
func (s *Schema) selfCheck() error {
	if s.Namespace == "" || s.Prefix == "" {
		return fmt.Errorf("schema must declare taxonomy namespace and prefix")
	}

	seenSheets := make(map[string]bool)
	for _, sheet := range s.Sheets {
		if seenSheets[sheet.Name] {
			return fmt.Errorf("duplicate sheet %q", sheet.Name)
		}
		seenSheets[sheet.Name] = true

		if sheet.Layout != LayoutTable && sheet.Layout != LayoutKeyValue {
			return fmt.Errorf("sheet %q has unknown layout %q", sheet.Name, sheet.Layout)
		}

		for _, field := range sheet.Fields {
			if field.Column == "" {
				return fmt.Errorf("field %q has no column reference", field.Name)
			}
			switch field.Type {
			case TypeString, TypeDecimal, TypeInteger, TypeEnum, TypeDate, TypeBoolean:
			default:
				return fmt.Errorf("field %q has unknown type %q", field.Name, field.Type)
			}
			if field.Concept != "" && !strings.HasPrefix(field.Concept, s.Prefix+":") {
				return fmt.Errorf("field %q concept %q is outside the %s taxonomy", field.Name, field.Concept, s.Prefix)
			}
			if field.Numeric() && field.Unit == UnitNone {
				return fmt.Errorf("numeric field %q declares no unit", field.Name)
			}
			if !field.Numeric() && field.Unit != UnitNone {
				return fmt.Errorf("non-numeric field %q declares unit %q", field.Name, field.Unit)
			}
			if field.Type == TypeEnum && len(field.Domain) == 0 && field.DomainKind == "" {
				return fmt.Errorf("enum field %q declares no domain", field.Name)
			}
		}
	}

	for _, name := range []string{SheetGeneral, SheetOverview, SheetSubsidiaries, SheetOmitted} {
		if !seenSheets[name] {
			return fmt.Errorf("schema is missing required sheet %q", name)
		}
	}

	// Jurisdiction-scoped sheets need the country code field that keys their contexts
	for _, name := range []string{SheetOverview, SheetSubsidiaries} {
		if jurisdictionKeyField(s.sheet(name)) == nil {
			return fmt.Errorf("sheet %q has no jurisdiction code field", name)
		}
	}

	return nil
}

func (s *Schema) sheet(name string) *SheetSpec {
	for i := range s.Sheets {
		if s.Sheets[i].Name == name {
			return &s.Sheets[i]
		}
	}
	return nil
}

// jurisdictionKeyField returns the field whose value keys per-jurisdiction contexts
func jurisdictionKeyField(sheet *SheetSpec) *FieldSpec {
	if sheet == nil {
		return nil
	}
	for i := range sheet.Fields {
		f := &sheet.Fields[i]
		if f.Role == RoleJurisdiction && f.DomainKind == "iso3166" {
			return f
		}
	}
	return nil
}

// Public accessors over the process-wide schema

// Sheets returns the sheet specs in declaration order
func Sheets() []SheetSpec {
	return schema.Sheets
}

// FieldsFor returns the ordered field specs for a sheet, or nil for an unknown sheet
func FieldsFor(sheetName string) []FieldSpec {
	if sheet := schema.sheet(sheetName); sheet != nil {
		return sheet.Fields
	}
	return nil
}

// ConceptFor returns the taxonomy concept bound to a field, or empty string
func ConceptFor(fieldName string) string {
	if f, ok := schema.byField[fieldName]; ok {
		return f.Concept
	}
	return ""
}

// FieldByName returns the FieldSpec for a field name, or nil
func FieldByName(fieldName string) *FieldSpec {
	return schema.byField[fieldName]
}

// SchemaVersion returns the regulation revision the schema is pinned to
func SchemaVersion() string {
	return schema.Version
}

// TaxonomyNamespace returns the CbCR taxonomy namespace URI
func TaxonomyNamespace() string {
	return schema.Namespace
}

// TaxonomyPrefix returns the taxonomy namespace prefix used in concept names
func TaxonomyPrefix() string {
	return schema.Prefix
}
