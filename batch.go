package cbcr

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BatchOptions configures a multi-workbook conversion run
type BatchOptions struct {
	InputDir        string // Required: directory scanned for .xlsx workbooks
	OutputDir       string // Required: directory receiving .xhtml documents
	Options         Options
	ContinueOnError bool // Keep going when one workbook fails
}

// BatchResult summarizes a batch run. Per-file problems are collected,
// not thrown, so one bad workbook does not hide the rest.
type BatchResult struct {
	Total     int
	Converted int
	Reports   map[string][]Finding // findings per input file name
	Errors    []error
}

// ConvertBatch converts every workbook in InputDir, writing one .xhtml
// document per successfully converted workbook into OutputDir.
func ConvertBatch(opts BatchOptions) (*BatchResult, error) {
	if opts.InputDir == "" {
		return nil, fmt.Errorf("InputDir is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("OutputDir is required")
	}

	paths, err := filepath.Glob(filepath.Join(opts.InputDir, "*.xlsx"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}
	sort.Strings(paths)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BatchResult{
		Total:   len(paths),
		Reports: make(map[string][]Finding),
	}

	for _, path := range paths {
		name := filepath.Base(path)

		grids, err := LoadWorkbook(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", name, err))
			if !opts.ContinueOnError {
				return result, nil
			}
			continue
		}

		conv, err := Convert(grids, opts.Options)
		if conv != nil {
			result.Reports[name] = conv.Findings
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", name, err))
			if !opts.ContinueOnError {
				return result, nil
			}
			continue
		}
		if conv.Blocked() {
			errs, _ := CountBySeverity(conv.Findings)
			result.Errors = append(result.Errors, fmt.Errorf("%s: blocked by %d validation error(s)", name, errs))
			if !opts.ContinueOnError {
				return result, nil
			}
			continue
		}

		outName := strings.TrimSuffix(name, filepath.Ext(name)) + ".xhtml"
		outPath := filepath.Join(opts.OutputDir, outName)
		if err := os.WriteFile(outPath, []byte(conv.Document), 0o644); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: failed to write output: %w", name, err))
			if !opts.ContinueOnError {
				return result, nil
			}
			continue
		}

		result.Converted++
	}

	return result, nil
}
