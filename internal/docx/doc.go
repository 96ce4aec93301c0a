// Package docx writes minimal WordprocessingML (.docx) packages.
//
// Only the subset needed by the weekly report is supported: paragraphs of
// styled runs, line breaks and tabs, and tables with merged and shaded cells.
// The package is written as a zip archive holding the content types, the
// package relationships, the main document part and a styles part that sets
// the default font.
package docx
