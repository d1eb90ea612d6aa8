package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cbcr "github.com/finreglab/go-cbcr"
)

var profilePath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cbcrgen",
		Short:         "Convert CbCR spreadsheet submissions to XHTML with inline XBRL",
		Long:          "cbcrgen converts country-by-country reporting workbooks (EU 2024/2952)\ninto regulator-compliant XHTML documents with embedded inline XBRL facts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&profilePath, "profile", "", "path to a yaml conversion profile")
	root.AddCommand(convertCmd(), validateCmd(), batchCmd(), versionCmd())
	return root
}

func loadProfile() (*cbcr.Profile, error) {
	if profilePath == "" {
		return cbcr.DefaultProfile(), nil
	}
	return cbcr.LoadProfile(profilePath)
}

func convertCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "convert <workbook.xlsx>",
		Short: "Convert one workbook to an XHTML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile()
			if err != nil {
				return err
			}

			grids, err := cbcr.LoadWorkbook(args[0])
			if err != nil {
				return err
			}

			result, err := cbcr.Convert(grids, profile.Options())
			if result != nil {
				printFindings(result.Findings)
			}
			if err != nil {
				return err
			}
			if result.Blocked() {
				errs, _ := cbcr.CountBySeverity(result.Findings)
				return fmt.Errorf("conversion blocked by %d validation error(s)", errs)
			}

			if outputPath == "" {
				base := filepath.Base(args[0])
				outputPath = strings.TrimSuffix(base, filepath.Ext(base)) + ".xhtml"
			}
			if err := os.WriteFile(outputPath, []byte(result.Document), 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Wrote %s (%d facts, %d contexts, %d units)\n",
				outputPath, len(result.Facts), len(result.Resources.Contexts), len(result.Resources.Units))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: <workbook>.xhtml)")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workbook.xlsx>",
		Short: "Validate a workbook without producing a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grids, err := cbcr.LoadWorkbook(args[0])
			if err != nil {
				return err
			}

			records, findings := cbcr.ReadSheets(grids)
			findings = append(findings, cbcr.Validate(records)...)
			printFindings(findings)

			errs, warns := cbcr.CountBySeverity(findings)
			fmt.Fprintf(os.Stderr, "%d error(s), %d warning(s)\n", errs, warns)
			if errs > 0 {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	var inputDir, outputDir string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert every workbook in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = profile.OutputDir
			}

			result, err := cbcr.ConvertBatch(cbcr.BatchOptions{
				InputDir:        inputDir,
				OutputDir:       outputDir,
				Options:         profile.Options(),
				ContinueOnError: *profile.ContinueOnError,
			})
			if err != nil {
				return err
			}

			for _, convErr := range result.Errors {
				fmt.Fprintf(os.Stderr, "  %v\n", convErr)
			}
			fmt.Fprintf(os.Stderr, "Converted %d/%d workbook(s)\n", result.Converted, result.Total)
			if result.Converted < result.Total {
				return fmt.Errorf("%d workbook(s) failed", result.Total-result.Converted)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "in", ".", "directory scanned for .xlsx workbooks")
	cmd.Flags().StringVar(&outputDir, "out", "", "directory receiving .xhtml documents (default: profile output_dir)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the taxonomy revision the converter is pinned to",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cbcrgen schema %s (%s)\n", cbcr.SchemaVersion(), cbcr.TaxonomyNamespace())
		},
	}
}

func printFindings(findings []cbcr.Finding) {
	for _, f := range findings {
		fmt.Fprintf(os.Stderr, "  %s\n", f)
	}
}
