// Package dataprocessing turns the weekly input spreadsheets into a
// week-over-week seller summary.
//
// # Architecture
//
// The package is organized into three components:
//
//  1. Tables: LoadTable reads the first sheet of an xlsx workbook or a csv
//     file into a Table with normalized (trimmed, lower-cased) column names.
//     Cells keep their raw value and whether the source stored them as text.
//  2. Normalizers: DetectWeek reads the report week from the progress
//     filename and ToPercent brings selection parity values to one scale.
//  3. Analyzer: ranks GMS contributors and detractors, selects parity
//     movements and lists sellers coming from zero selection.
//
// # Usage
//
//	progress, err := dataprocessing.LoadTable("Top_100_progress_OHL_w52.xlsx")
//	if err != nil {
//	    return err
//	}
//	analyzer := dataprocessing.NewAnalyzer(dataprocessing.DefaultAnalyzerOptions(), logger)
//	result, err := analyzer.Analyze(ctx, dataprocessing.AnalysisInput{
//	    Raw:              raw,
//	    Progress:         progress,
//	    ProgressFilename: "Top_100_progress_OHL_w52.xlsx",
//	})
//
// # Error Handling
//
// Structural problems abort the analysis before anything is computed:
// ErrWeekNotDetected for filenames without a week marker, and
// *MissingColumnError (matching ErrMissingColumn) for absent columns.
// Individual malformed cells are treated as missing values and skipped.
package dataprocessing
