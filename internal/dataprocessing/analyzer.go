package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"weeklyreport/pkg/contracts/domain"
)

// Progress file columns the analyzer depends on, besides the two GMS weeks.
const (
	ColumnMerchantName    = "merchant_name"
	ColumnSAS             = "sas"
	ColumnSelectionParity = "selection_parity_comp"
)

// NotAvailable is the text used for empty report sections.
const NotAvailable = "N/A."

// ErrMissingColumn is matched by every *MissingColumnError.
var ErrMissingColumn = errors.New("missing column")

// MissingColumnError reports a required column absent from an input file.
type MissingColumnError struct {
	Column string
	File   string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("expected column '%s' not found in %s", e.Column, e.File)
}

// Is makes errors.Is(err, ErrMissingColumn) succeed.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// AnalyzerOptions tunes ranking and parity thresholds.
type AnalyzerOptions struct {
	TopN                    int
	ParityIncreaseThreshold float64
	ParityDecreaseThreshold float64
	ZeroMetricColumn        string
	SASValue                string
}

// DefaultAnalyzerOptions returns the thresholds used by the weekly report.
func DefaultAnalyzerOptions() AnalyzerOptions {
	return AnalyzerOptions{
		TopN:                    3,
		ParityIncreaseThreshold: 30,
		ParityDecreaseThreshold: -50,
		ZeroMetricColumn:        "amazon_ba",
		SASValue:                "yes",
	}
}

// AnalysisInput holds the loaded tables of one report run. Raw may be nil,
// in which case the from-zero-selection section is empty.
type AnalysisInput struct {
	Raw              *Table
	Progress         *Table
	ProgressFilename string
}

// Analyzer computes the week-over-week summary of the Top-100 progress file.
// It holds no per-run state and is safe for concurrent use.
type Analyzer struct {
	opts   AnalyzerOptions
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. Zero-valued options fall back to defaults.
func NewAnalyzer(opts AnalyzerOptions, logger *slog.Logger) *Analyzer {
	def := DefaultAnalyzerOptions()
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if opts.ZeroMetricColumn == "" {
		opts.ZeroMetricColumn = def.ZeroMetricColumn
	}
	if opts.SASValue == "" {
		opts.SASValue = def.SASValue
	}
	if opts.ParityIncreaseThreshold == 0 && opts.ParityDecreaseThreshold == 0 {
		opts.ParityIncreaseThreshold = def.ParityIncreaseThreshold
		opts.ParityDecreaseThreshold = def.ParityDecreaseThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		opts:   opts,
		logger: logger.With(slog.String("component", "analyzer")),
	}
}

// Options returns the effective options.
func (a *Analyzer) Options() AnalyzerOptions {
	return a.opts
}

// Analyze validates the progress table and builds the weekly summary. All
// validation happens before any computation so callers never see a partial
// result.
func (a *Analyzer) Analyze(ctx context.Context, in AnalysisInput) (*domain.WeeklyAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Progress == nil {
		return nil, errors.New("progress table is required")
	}

	week, prev, err := DetectWeek(in.ProgressFilename)
	if err != nil {
		return nil, err
	}

	required := []string{
		domain.GMSColumn(week),
		domain.GMSColumn(prev),
		ColumnMerchantName,
		ColumnSAS,
		ColumnSelectionParity,
	}
	for _, col := range required {
		if !in.Progress.Has(col) {
			return nil, &MissingColumnError{Column: col, File: "progress file"}
		}
	}

	rows := ExtractProgressRows(in.Progress, week, prev, a.opts.SASValue)

	result := &domain.WeeklyAnalysis{
		Week:         week,
		PreviousWeek: prev,
		RowsAnalyzed: len(rows),
	}
	result.Contributors, result.Detractors = a.rank(rows)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	increase, decrease := a.parity(rows)
	result.ParityIncrease = increase
	result.ParityIncreaseText = ParityIncreaseText(increase)
	for _, e := range decrease {
		result.ParityDecrease.Set(e.Name, e.Label())
	}

	result.FromZeroSelection = FromZeroSelection(in.Raw, a.opts.ZeroMetricColumn)
	result.FromZeroSelectionText = joinOrNA(result.FromZeroSelection)

	a.logger.InfoContext(ctx, "weekly analysis complete",
		slog.Int("week", week),
		slog.Int("previous_week", prev),
		slog.Int("rows", len(rows)),
		slog.Int("parity_increase", len(increase)),
		slog.Int("parity_decrease", result.ParityDecrease.Len()),
		slog.Int("from_zero_selection", len(result.FromZeroSelection)))

	return result, nil
}

// ExtractProgressRows converts the progress table into typed rows. GMS cells
// that do not parse are left nil.
func ExtractProgressRows(t *Table, week, prev int, sasValue string) []domain.ProgressRow {
	curCol := domain.GMSColumn(week)
	prevCol := domain.GMSColumn(prev)

	rows := make([]domain.ProgressRow, 0, t.Len())
	for i := range t.Rows {
		row := domain.ProgressRow{
			MerchantName: t.Cell(i, ColumnMerchantName).String(),
			SAS:          strings.EqualFold(t.Cell(i, ColumnSAS).String(), sasValue),
		}
		if v, ok := t.Cell(i, curCol).Float(); ok {
			row.CurrentGMS = &v
		}
		if v, ok := t.Cell(i, prevCol).Float(); ok {
			row.PreviousGMS = &v
		}
		if v, ok := ToPercent(t.Cell(i, ColumnSelectionParity)); ok {
			row.SelectionParity = &v
		}
		rows = append(rows, row)
	}
	return rows
}

type rankedSeller struct {
	delta domain.SellerDelta
	sas   bool
}

// rank splits rows with a GMS diff into contributors (largest gain first)
// and detractors (largest loss first), each divided by SAS flag.
func (a *Analyzer) rank(rows []domain.ProgressRow) (contributors, detractors domain.Ranking) {
	var gains, losses []rankedSeller

	for _, r := range rows {
		diff, ok := r.Diff()
		if !ok {
			continue
		}
		s := rankedSeller{
			delta: domain.SellerDelta{
				Name:        r.MerchantName,
				CurrentGMS:  *r.CurrentGMS,
				PreviousGMS: *r.PreviousGMS,
				Diff:        diff,
			},
			sas: r.SAS,
		}
		switch {
		case diff > 0:
			gains = append(gains, s)
		case diff < 0:
			losses = append(losses, s)
		}
	}

	sort.SliceStable(gains, func(i, j int) bool { return gains[i].delta.Diff > gains[j].delta.Diff })
	sort.SliceStable(losses, func(i, j int) bool { return losses[i].delta.Diff < losses[j].delta.Diff })

	return a.split(gains), a.split(losses)
}

// split keeps the first TopN sellers of each SAS group, preserving order.
func (a *Analyzer) split(sorted []rankedSeller) domain.Ranking {
	r := domain.Ranking{
		SAS:    []domain.SellerDelta{},
		NonSAS: []domain.SellerDelta{},
	}
	for _, s := range sorted {
		if s.sas {
			if len(r.SAS) < a.opts.TopN {
				r.SAS = append(r.SAS, s.delta)
			}
		} else if len(r.NonSAS) < a.opts.TopN {
			r.NonSAS = append(r.NonSAS, s.delta)
		}
	}
	return r
}

// parity selects sellers whose selection parity crossed the thresholds.
// Rows without a merchant name or parity value are skipped.
func (a *Analyzer) parity(rows []domain.ProgressRow) (increase, decrease []domain.ParityEntry) {
	increase = []domain.ParityEntry{}
	decrease = []domain.ParityEntry{}

	for _, r := range rows {
		if r.MerchantName == "" || r.SelectionParity == nil {
			continue
		}
		p := *r.SelectionParity
		e := domain.ParityEntry{Name: r.MerchantName, Percent: p}
		if p >= a.opts.ParityIncreaseThreshold {
			increase = append(increase, e)
		}
		if p <= a.opts.ParityDecreaseThreshold {
			decrease = append(decrease, e)
		}
	}

	sort.SliceStable(increase, func(i, j int) bool { return increase[i].Percent > increase[j].Percent })
	sort.SliceStable(decrease, func(i, j int) bool { return decrease[i].Percent < decrease[j].Percent })
	return increase, decrease
}

// ParityIncreaseText renders one "name<TAB>NN%" line per entry, or "N/A.".
func ParityIncreaseText(entries []domain.ParityEntry) string {
	if len(entries) == 0 {
		return NotAvailable
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Name + "\t" + e.Label()
	}
	return strings.Join(lines, "\n")
}

// FromZeroSelection lists unique merchant names, in first-seen order, whose
// metric column is numerically zero. A nil table or a table without the
// metric column yields an empty list.
func FromZeroSelection(raw *Table, metricColumn string) []string {
	names := []string{}
	if raw == nil || !raw.Has(metricColumn) || !raw.Has(ColumnMerchantName) {
		return names
	}

	seen := make(map[string]struct{})
	for i := range raw.Rows {
		metric := raw.Cell(i, metricColumn)
		if metric.Text {
			continue
		}
		v, ok := metric.Float()
		if !ok || v != 0 {
			continue
		}
		name := raw.Cell(i, ColumnMerchantName).String()
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func joinOrNA(lines []string) string {
	if len(lines) == 0 {
		return NotAvailable
	}
	return strings.Join(lines, "\n")
}
