package exporter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weeklyreport/internal/docx"
)

func newTestWriter() *WeeklyReportWriter {
	return NewWeeklyReportWriter(DefaultReportOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Weekly_Top100_Report_Week_12.docx", FileName(12))
	assert.Equal(t, "Weekly_Top100_Report_Week_1.docx", FileName(1))
}

func TestWeeklyReportLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestWriter().Write(context.Background(), &buf, sampleAnalysis()))

	paragraphs, err := docx.ReadParagraphs(buf.Bytes())
	require.NoError(t, err)

	header := []string{"SP", "gms_12", "gms_11", "gms_difference"}
	var expected []string
	expected = append(expected,
		"Dear Zeliha and OHL Team,",
		"",
		DefaultReportOptions().Intro,
		"",
		"Wow Top GMS Contributors:",
		"",
		"Top Contributors (SAS)")
	expected = append(expected, header...)
	expected = append(expected,
		"Alpha", "1,500", "500", "1,000",
		"N/A", "300.50", "100", "200.50",
		"Top Contributors (Non-SAS)")
	expected = append(expected, header...)
	expected = append(expected,
		"N/A",
		"",
		"Wow Top GMS detractors:",
		"",
		"Top Detractors (SAS)")
	expected = append(expected, header...)
	expected = append(expected,
		"Gamma", "100", "400", "-300",
		"Top Detractors (Non-SAS)")
	expected = append(expected, header...)
	expected = append(expected,
		"Delta", "10", "20", "-10",
		"", "",
		"From Zero Selection vice versa",
		"",
		"X\nW",
		"",
		"WoW parity increase:",
		"",
		"Beta\t45%\nAlpha\t35%",
		"",
		"WoW parity decrease:",
		"",
		"Foxtrot", "-92%",
		"Echo", "-60%",
		"", "",
		"Regards.",
		"")

	assert.Equal(t, expected, paragraphs)
}

func TestWeeklyReportTables(t *testing.T) {
	doc := newTestWriter().Build(sampleAnalysis())

	tables := doc.Tables()
	require.Len(t, tables, 3)

	contributors := tables[0]
	assert.Equal(t, 4, contributors.Cols)
	// title, header, two sellers, title, header, N/A
	require.Len(t, contributors.Rows, 7)

	title := contributors.Rows[0].Cells[0]
	assert.Equal(t, 4, title.Span)
	assert.True(t, title.Runs[0].Bold)

	for i, c := range contributors.Rows[1].Cells {
		assert.Equal(t, docx.ColorBlack, c.Shading)
		assert.Equal(t, docx.ColorWhite, c.Runs[0].Color)
		assert.True(t, c.Runs[0].Bold)
		if i == 0 {
			assert.Equal(t, docx.AlignLeft, c.Align)
		} else {
			assert.Equal(t, docx.AlignRight, c.Align)
		}
	}

	data := contributors.Rows[2].Cells
	assert.Equal(t, "Aptos Narrow", data[1].Runs[0].Font)
	assert.Equal(t, 11, data[1].Runs[0].SizePt)
	assert.Equal(t, docx.AlignRight, data[3].Align)

	empty := contributors.Rows[6].Cells
	require.Len(t, empty, 1)
	assert.Equal(t, 4, empty[0].Span)
	assert.Equal(t, "N/A", empty[0].Runs[0].Text)

	parity := tables[2]
	assert.Equal(t, 2, parity.Cols)
	assert.Len(t, parity.Rows, 2)
}

func TestWeeklyReportEmptySections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestWriter().Write(context.Background(), &buf, emptyAnalysis()))

	paragraphs, err := docx.ReadParagraphs(buf.Bytes())
	require.NoError(t, err)

	assert.Contains(t, paragraphs, "gms_52")
	assert.Contains(t, paragraphs, "gms_1")

	idx := indexOf(paragraphs, "WoW parity decrease:")
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "N/A.", paragraphs[idx+2])

	doc := newTestWriter().Build(emptyAnalysis())
	assert.Len(t, doc.Tables(), 2)
}

func TestWeeklyReportCustomProse(t *testing.T) {
	w := NewWeeklyReportWriter(ReportOptions{Greeting: "Hello team,", FontName: "Calibri"}, nil)

	paragraphs := w.Build(sampleAnalysis()).Paragraphs()
	require.NotEmpty(t, paragraphs)
	assert.Equal(t, "Hello team,", paragraphs[0].Runs[0].Text)

	last := paragraphs[len(paragraphs)-2]
	assert.Equal(t, "Regards.", last.Runs[0].Text)

	cell := w.Build(sampleAnalysis()).Tables()[0].Rows[2].Cells[0]
	assert.Equal(t, "Calibri", cell.Runs[0].Font)
	assert.Equal(t, 11, cell.Runs[0].SizePt)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := newTestWriter().WriteFile(context.Background(), dir, sampleAnalysis())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Weekly_Top100_Report_Week_12.docx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = docx.ReadParagraphs(data)
	assert.NoError(t, err)
}

func TestWriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := newTestWriter().WriteFile(ctx, dir, sampleAnalysis())
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func indexOf(items []string, target string) int {
	for i, s := range items {
		if s == target {
			return i
		}
	}
	return -1
}
