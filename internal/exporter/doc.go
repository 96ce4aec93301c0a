// Package exporter renders a weekly analysis into the files handed to the
// report recipients.
//
// WeeklyReportWriter builds the Word document with the greeting, the
// contributor and detractor tables, the parity sections and the closing.
//
// DetailsWriter writes an xlsx workbook with one sheet per report section,
// used as the attachment that accompanies the document.
//
// CSVWriter writes UTF-8 CSV files with an optional BOM for Excel and is used
// for the flat per-seller delta export.
//
// Example usage:
//
//	writer := exporter.NewWeeklyReportWriter(exporter.DefaultReportOptions(), logger)
//	path, err := writer.WriteFile(outputDir, analysis)
package exporter
