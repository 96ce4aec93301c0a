package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/services"
)

type reportFlags struct {
	out     string
	details bool
	csv     bool
	json    bool
}

func newReportCmd(c *cli) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report <raw> <progress> <gms>",
		Short: "Generate the weekly Top 100 report document",
		Long: `Reads the raw, progress and GMS spreadsheets (.xlsx or .csv) and writes
Weekly_Top100_Report_Week_<week>.docx. The week is taken from the progress
file name, which must contain w<number> (for example Top100_W12.xlsx).

Example:
  weeklyreport report raw.xlsx Top100_Progress_W12.xlsx gms.xlsx --out reports`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output directory (default: current directory)")
	cmd.Flags().BoolVar(&flags.details, "details", false, "also write the seller details workbook")
	cmd.Flags().BoolVar(&flags.csv, "csv", false, "also write the per-seller delta CSV")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the analysis as JSON instead of writing files")
	cmd.MarkFlagsMutuallyExclusive("json", "details")
	cmd.MarkFlagsMutuallyExclusive("json", "csv")
	return cmd
}

func (c *cli) runReport(cmd *cobra.Command, args []string, flags reportFlags) error {
	ctx := infrastructure.EnsureTraceID(cmd.Context())
	svc := services.NewReportService(c.cfg.Analysis, c.cfg.Report, nil, c.logger)
	req := services.ReportRequest{
		RawPath:      args[0],
		ProgressPath: args[1],
		GMSPath:      args[2],
	}

	if flags.json {
		analysis, err := svc.Analyze(ctx, req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	out := flags.out
	if out == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		out = wd
	}

	result, err := svc.Generate(ctx, req, services.GenerateOptions{
		OutputDir: out,
		Details:   flags.details,
		CSV:       flags.csv,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Report generated: %s\n", result.DocumentPath)
	if result.DetailsPath != "" {
		fmt.Fprintf(w, "Details written: %s\n", result.DetailsPath)
	}
	if result.CSVPath != "" {
		fmt.Fprintf(w, "CSV written: %s\n", result.CSVPath)
	}
	return nil
}

type flagBrandsFlags struct {
	merchants string
	report    string
	out       string
}

func newFlagBrandsCmd(c *cli) *cobra.Command {
	var flags flagBrandsFlags

	cmd := &cobra.Command{
		Use:   "flag-brands",
		Short: "Mark report rows whose brand is on the OHL merchant list",
		Long: `Adds an OHL_STATUS column right of every BRAND column in the report
workbook. Rows get OHL when the brand is in the ';' separated merchant list
(column MERCHANT NAME) and NOT OHL otherwise. Sheets without a BRAND column
are copied unchanged.

Example:
  weeklyreport flag-brands --merchants ohl.csv --report "Top100 w12.xlsx"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFlagBrands(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.merchants, "merchants", "", "merchant reference CSV")
	cmd.Flags().StringVar(&flags.report, "report", "", "report workbook (.xlsx)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output workbook (default: <report>_OHL_FLAGGED.xlsx next to the report)")
	_ = cmd.MarkFlagRequired("merchants")
	_ = cmd.MarkFlagRequired("report")
	return cmd
}

func (c *cli) runFlagBrands(cmd *cobra.Command, flags flagBrandsFlags) error {
	out := flags.out
	if out == "" {
		out = filepath.Join(filepath.Dir(flags.report), services.FlaggedFileName(flags.report))
	}
	if samePath(out, flags.report) {
		return errors.New("output workbook must differ from the report workbook")
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	result, err := services.NewBrandService(nil, c.logger).Flag(ctx, flags.merchants, flags.report, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Flagged workbook written: %s (%d of %d sheets flagged, %d merchants)\n",
		out, result.FlaggedSheets(), len(result.Sheets), result.Merchants)
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
