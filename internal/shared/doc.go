// Package shared holds code used by several packages without belonging to
// any of them. Its testutil subpackage provides the captured slog handler
// and the spreadsheet fixtures the package tests share.
package shared
