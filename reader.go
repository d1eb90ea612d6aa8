package cbcr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts accepted in submissions, tried in order. The canonical
// lexical form is always YYYY-MM-DD regardless of the input layout.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// ReadSheets turns the raw cell grids of a submission into typed
// records, one slice per schema sheet. Structural problems (missing
// sheets, uncoercible cells) are collected as findings; a missing
// sheet short-circuits that sheet only.
func ReadSheets(grids map[string]CellGrid) (map[string][]Record, []Finding) {
	records := make(map[string][]Record)
	var findings []Finding

	for i := range Sheets() {
		sheet := &Sheets()[i]

		grid, ok := findGrid(grids, sheet.Name)
		if !ok {
			if sheet.Name == SheetOmitted {
				// Omission reporting is conditionally required
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Sheet:    sheet.Name,
					Code:     CodeOmittedSheetAbsent,
					Message:  "sheet not present; omission disclosure assumed empty",
				})
			} else {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Sheet:    sheet.Name,
					Code:     CodeSheetMissing,
					Message:  fmt.Sprintf("required sheet %q not found in workbook", sheet.Name),
				})
			}
			continue
		}

		recs, sheetFindings := ReadSheet(grid, sheet)
		records[sheet.Name] = recs
		findings = append(findings, sheetFindings...)
	}

	return records, findings
}

// ReadSheet reads one sheet's grid according to its declared layout
func ReadSheet(grid CellGrid, sheet *SheetSpec) ([]Record, []Finding) {
	if sheet.Layout == LayoutKeyValue {
		return readKeyValueSheet(grid, sheet)
	}
	return readTableSheet(grid, sheet)
}

// findGrid locates a sheet grid by name, tolerating the loose sheet
// naming seen in real uploads ("2. Country-by-Country Overview" etc.)
func findGrid(grids map[string]CellGrid, name string) (CellGrid, bool) {
	if g, ok := grids[name]; ok {
		return g, true
	}
	// Deterministic fallback scan: exact fold match wins over containment
	var foldKey, containsKey string
	for k := range grids {
		if strings.EqualFold(NormalizeCellText(k), name) {
			if foldKey == "" || k < foldKey {
				foldKey = k
			}
		} else if equalLabel(k, name) {
			if containsKey == "" || k < containsKey {
				containsKey = k
			}
		}
	}
	if foldKey != "" {
		return grids[foldKey], true
	}
	if containsKey != "" {
		return grids[containsKey], true
	}
	return nil, false
}

// readTableSheet reads a header row followed by one record per data row.
// Trailing (and interior) fully-empty rows are skipped silently.
func readTableSheet(grid CellGrid, sheet *SheetSpec) ([]Record, []Finding) {
	var records []Record
	var findings []Finding

	if len(grid) == 0 {
		return records, findings
	}

	// Map each field to its column index via the header row. A field
	// whose column is absent stays unmapped and is simply absent in
	// every record; the required-field rule reports it downstream.
	header := grid[0]
	columns := make(map[string]int)
	for i := range sheet.Fields {
		field := &sheet.Fields[i]
		for col, cell := range header {
			if cell.Kind == CellString && equalLabel(cell.Text, field.Column) {
				if _, taken := columns[field.Name]; !taken {
					columns[field.Name] = col
				}
			}
		}
	}

	for rowIdx := 1; rowIdx < len(grid); rowIdx++ {
		row := grid[rowIdx]
		if rowIsBlank(row) {
			continue
		}

		rec := NewRecord(sheet.Name, rowIdx+1)
		for i := range sheet.Fields {
			field := &sheet.Fields[i]
			col, mapped := columns[field.Name]
			if !mapped || col >= len(row) {
				continue
			}

			value, absent, err := coerceCell(row[col], field.Type)
			if err != nil {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Sheet:    sheet.Name,
					Row:      rec.Row,
					Field:    field.Name,
					Code:     CodeTypeMismatch,
					Message:  err.Error(),
				})
				rec.markInvalid(field.Name)
				continue
			}
			if !absent {
				rec.set(field.Name, value)
			}
		}

		records = append(records, *rec)
	}

	return records, findings
}

// readKeyValueSheet reads label/value pairs from the first two columns
// into a single record (General Information layout).
func readKeyValueSheet(grid CellGrid, sheet *SheetSpec) ([]Record, []Finding) {
	var findings []Finding

	rec := NewRecord(sheet.Name, 1)
	for rowIdx, row := range grid {
		if len(row) < 2 || row[0].Kind != CellString || row[0].IsBlank() {
			continue
		}
		label := row[0].Text

		for i := range sheet.Fields {
			field := &sheet.Fields[i]
			if !equalLabel(label, field.Column) || rec.Has(field.Name) {
				continue
			}

			value, absent, err := coerceCell(row[1], field.Type)
			if err != nil {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Sheet:    sheet.Name,
					Row:      rowIdx + 1,
					Field:    field.Name,
					Code:     CodeTypeMismatch,
					Message:  err.Error(),
				})
				rec.markInvalid(field.Name)
				continue
			}
			if !absent {
				rec.set(field.Name, value)
			}
			break
		}
	}

	return []Record{*rec}, findings
}

func rowIsBlank(row []Cell) bool {
	for _, cell := range row {
		if !cell.IsBlank() {
			return false
		}
	}
	return true
}

// coerceCell converts one raw cell to the field's declared type.
// A blank cell is absent, not an error; an unparseable non-blank cell
// is a type mismatch and the field is recorded as absent upstream.
func coerceCell(cell Cell, dataType DataType) (Value, bool, error) {
	if cell.IsBlank() {
		return Value{}, true, nil
	}

	switch dataType {
	case TypeString, TypeEnum:
		if cell.Kind == CellNumber {
			return Value{}, false, fmt.Errorf("expected text, got number %v", cell.Number)
		}
		text := NormalizeCellText(cell.Text)
		return Value{Type: dataType, Text: text}, false, nil

	case TypeDecimal:
		num, err := cellNumber(cell)
		if err != nil {
			return Value{}, false, fmt.Errorf("value %q is not a valid decimal number", cell.Text)
		}
		return Value{Type: dataType, Text: formatDecimal(num), Number: num}, false, nil

	case TypeInteger:
		num, err := cellNumber(cell)
		if err != nil || num != float64(int64(num)) {
			return Value{}, false, fmt.Errorf("value %q is not a valid integer", cellLexical(cell))
		}
		n := int64(num)
		return Value{Type: dataType, Text: strconv.FormatInt(n, 10), Number: float64(n)}, false, nil

	case TypeDate:
		if cell.Kind == CellNumber {
			return Value{}, false, fmt.Errorf("expected a date, got raw number %v", cell.Number)
		}
		text := NormalizeCellText(cell.Text)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return Value{Type: dataType, Text: t.Format("2006-01-02"), Date: t}, false, nil
			}
		}
		return Value{}, false, fmt.Errorf("value %q is not a valid date", text)

	case TypeBoolean:
		text := strings.ToLower(NormalizeCellText(cellLexical(cell)))
		switch text {
		case "true", "yes", "y", "1":
			return Value{Type: dataType, Text: "true", Bool: true}, false, nil
		case "false", "no", "n", "0":
			return Value{Type: dataType, Text: "false", Bool: false}, false, nil
		}
		return Value{}, false, fmt.Errorf("value %q is not a valid boolean", text)

	default:
		return Value{}, false, fmt.Errorf("unknown data type %q", dataType)
	}
}

func cellNumber(cell Cell) (float64, error) {
	if cell.Kind == CellNumber {
		return cell.Number, nil
	}
	return strconv.ParseFloat(normalizeNumberText(cell.Text), 64)
}

func cellLexical(cell Cell) string {
	if cell.Kind == CellNumber {
		return formatDecimal(cell.Number)
	}
	return cell.Text
}

// formatDecimal renders a number in its canonical lexical form:
// no exponent, no separators, no trailing zeros.
func formatDecimal(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
