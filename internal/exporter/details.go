package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"weeklyreport/pkg/contracts/domain"
)

// Sheet names of the details workbook.
const (
	SheetContributors = "Contributors"
	SheetDetractors   = "Detractors"
	SheetParity       = "Parity"
	SheetZeroSelect   = "From Zero Selection"
)

// DetailsWriter builds the xlsx attachment listing every report section.
type DetailsWriter struct {
	logger *slog.Logger
}

// NewDetailsWriter creates a details workbook writer.
func NewDetailsWriter(logger *slog.Logger) *DetailsWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailsWriter{logger: logger}
}

// DetailsFileName returns the workbook name for a report week.
func DetailsFileName(week int) string {
	return fmt.Sprintf("Weekly_Top100_Details_Week_%d.xlsx", week)
}

// Build creates the workbook. The caller owns the returned file and must
// close it.
func (d *DetailsWriter) Build(a *domain.WeeklyAnalysis) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#000000"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetContributors); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetDetractors, SheetParity, SheetZeroSelect} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	rankingHeader := []interface{}{"group", "sp_name", a.CurrentColumn(), a.PreviousColumn(), "gms_difference"}
	if err := d.writeSheet(f, SheetContributors, rankingHeader, rankingRows(a.Contributors), headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := d.writeSheet(f, SheetDetractors, rankingHeader, rankingRows(a.Detractors), headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	var parity [][]interface{}
	for _, e := range a.ParityIncrease {
		parity = append(parity, []interface{}{"increase", e.Name, e.Percent, e.Label()})
	}
	a.ParityDecrease.Each(func(name, label string) {
		parity = append(parity, []interface{}{"decrease", name, "", label})
	})
	if err := d.writeSheet(f, SheetParity, []interface{}{"direction", "sp_name", "percent", "label"}, parity, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	zero := make([][]interface{}, len(a.FromZeroSelection))
	for i, name := range a.FromZeroSelection {
		zero[i] = []interface{}{name}
	}
	if err := d.writeSheet(f, SheetZeroSelect, []interface{}{"merchant_name"}, zero, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func rankingRows(r domain.Ranking) [][]interface{} {
	var rows [][]interface{}
	for _, g := range r.Groups() {
		for _, s := range g.Sellers {
			rows = append(rows, []interface{}{g.Label, s.Name, s.CurrentGMS, s.PreviousGMS, s.Diff})
		}
	}
	return rows
}

func (d *DetailsWriter) writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

// WriteFile saves the details workbook to path.
func (d *DetailsWriter) WriteFile(path string, a *domain.WeeklyAnalysis) error {
	f, err := d.Build(a)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save details workbook: %w", err)
	}

	d.logger.Info("Details workbook written",
		slog.String("path", path),
		slog.Int("week", a.Week))
	return nil
}
