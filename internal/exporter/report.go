package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"weeklyreport/internal/docx"
	"weeklyreport/pkg/contracts/domain"
)

// ReportOptions holds the fixed prose and typography of the weekly document.
type ReportOptions struct {
	Greeting   string
	Intro      string
	Closing    string
	FontName   string
	FontSizePt int
}

// DefaultReportOptions returns the wording used for the OHL team report.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Greeting:   "Dear Zeliha and OHL Team,",
		Intro:      "Please find the WoW highlights of our Top 100 SPs below and the details attached and let me know if any further information is needed.",
		Closing:    "Regards.",
		FontName:   "Aptos Narrow",
		FontSizePt: 11,
	}
}

// FileName returns the document name for a report week.
func FileName(week int) string {
	return fmt.Sprintf("Weekly_Top100_Report_Week_%d.docx", week)
}

// WeeklyReportWriter renders a WeeklyAnalysis as a Word document.
type WeeklyReportWriter struct {
	opts   ReportOptions
	logger *slog.Logger
}

// NewWeeklyReportWriter creates a writer. Empty option fields take their
// default values.
func NewWeeklyReportWriter(opts ReportOptions, logger *slog.Logger) *WeeklyReportWriter {
	def := DefaultReportOptions()
	if opts.Greeting == "" {
		opts.Greeting = def.Greeting
	}
	if opts.Intro == "" {
		opts.Intro = def.Intro
	}
	if opts.Closing == "" {
		opts.Closing = def.Closing
	}
	if opts.FontName == "" {
		opts.FontName = def.FontName
	}
	if opts.FontSizePt <= 0 {
		opts.FontSizePt = def.FontSizePt
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeeklyReportWriter{
		opts:   opts,
		logger: logger.With(slog.String("component", "report_writer")),
	}
}

// Build lays out the document for a.
func (w *WeeklyReportWriter) Build(a *domain.WeeklyAnalysis) *docx.Document {
	doc := docx.New(w.opts.FontName, w.opts.FontSizePt)

	doc.AddParagraph(w.opts.Greeting)
	doc.AddBlank(1)
	doc.AddParagraph(w.opts.Intro)
	doc.AddBlank(1)

	doc.AddParagraph("Wow Top GMS Contributors:")
	doc.AddBlank(1)
	w.rankingTable(doc, a, a.Contributors, "Top Contributors")
	doc.AddBlank(1)

	doc.AddParagraph("Wow Top GMS detractors:")
	doc.AddBlank(1)
	w.rankingTable(doc, a, a.Detractors, "Top Detractors")
	doc.AddBlank(2)

	doc.AddParagraph("From Zero Selection vice versa")
	doc.AddBlank(1)
	doc.AddParagraph(orNA(a.FromZeroSelectionText))
	doc.AddBlank(1)

	doc.AddParagraph("WoW parity increase:")
	doc.AddBlank(1)
	doc.AddParagraph(orNA(a.ParityIncreaseText))
	doc.AddBlank(1)

	doc.AddParagraph("WoW parity decrease:")
	doc.AddBlank(1)
	if a.ParityDecrease.Len() == 0 {
		doc.AddParagraph(NotAvailable + ".")
	} else {
		table := doc.AddTable(2)
		a.ParityDecrease.Each(func(name, label string) {
			row := table.AddRow()
			row.AddCell(w.run(name), docx.AlignLeft)
			row.AddCell(w.run(label), docx.AlignLeft)
		})
	}

	doc.AddBlank(2)
	doc.AddParagraph(w.opts.Closing)
	doc.AddBlank(1)

	return doc
}

// rankingTable writes one four-column table holding every group of r: a
// merged title row, a black header row and the seller rows.
func (w *WeeklyReportWriter) rankingTable(doc *docx.Document, a *domain.WeeklyAnalysis, r domain.Ranking, prefix string) {
	table := doc.AddTable(4)
	headers := []string{"SP", a.CurrentColumn(), a.PreviousColumn(), "gms_difference"}

	for _, group := range r.Groups() {
		title := w.run(fmt.Sprintf("%s (%s)", prefix, group.Label))
		title.Bold = true
		title.Color = docx.ColorBlack
		table.AddRow().AddCell(title, docx.AlignLeft).Span = 4

		header := table.AddRow()
		for i, h := range headers {
			run := w.run(h)
			run.Bold = true
			run.Color = docx.ColorWhite
			header.AddCell(run, alignFor(i)).Shading = docx.ColorBlack
		}

		if len(group.Sellers) == 0 {
			table.AddRow().AddCell(w.run(NotAvailable), docx.AlignLeft).Span = 4
			continue
		}

		for _, s := range group.Sellers {
			name := s.Name
			if name == "" {
				name = NotAvailable
			}
			row := table.AddRow()
			for i, text := range []string{name, FormatNumber(s.CurrentGMS), FormatNumber(s.PreviousGMS), FormatNumber(s.Diff)} {
				row.AddCell(w.run(text), alignFor(i))
			}
		}
	}
}

func (w *WeeklyReportWriter) run(text string) docx.Run {
	return docx.Run{Text: text, Font: w.opts.FontName, SizePt: w.opts.FontSizePt}
}

func alignFor(col int) docx.Alignment {
	if col == 0 {
		return docx.AlignLeft
	}
	return docx.AlignRight
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable + "."
	}
	return s
}

// Write encodes the document for a to out.
func (w *WeeklyReportWriter) Write(ctx context.Context, out io.Writer, a *domain.WeeklyAnalysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Build(a).Write(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteFile saves the document into dir under FileName and returns its path.
func (w *WeeklyReportWriter) WriteFile(ctx context.Context, dir string, a *domain.WeeklyAnalysis) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(a.Week))
	if err := w.Build(a).Save(path); err != nil {
		return "", err
	}

	w.logger.InfoContext(ctx, "Weekly report written",
		slog.String("path", path),
		slog.Int("week", a.Week))
	return path, nil
}
