package cbcr

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads an XLSX workbook from disk into raw cell grids,
// one per sheet. This is the input-boundary glue: the pipeline itself
// only ever sees CellGrids.
func LoadWorkbook(path string) (map[string]CellGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return workbookGrids(f)
}

// ReadWorkbook reads an XLSX workbook from a stream into raw cell grids
func ReadWorkbook(r io.Reader) (map[string]CellGrid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()

	return workbookGrids(f)
}

func workbookGrids(f *excelize.File) (map[string]CellGrid, error) {
	grids := make(map[string]CellGrid)

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		grid := make(CellGrid, 0, len(rows))
		for _, row := range rows {
			cells := make([]Cell, 0, len(row))
			for _, raw := range row {
				if NormalizeCellText(raw) == "" {
					cells = append(cells, EmptyCell())
				} else {
					cells = append(cells, StringCell(raw))
				}
			}
			grid = append(grid, cells)
		}
		grids[sheet] = grid
	}

	return grids, nil
}
