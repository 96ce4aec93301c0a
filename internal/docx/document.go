package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Alignment is a paragraph justification.
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// Standard colors as six digit hex strings.
const (
	ColorBlack = "000000"
	ColorWhite = "FFFFFF"
)

// ContentType is the media type of a .docx file.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Run is a span of text sharing one set of character properties. Newlines in
// Text become line breaks and tabs become tab stops.
type Run struct {
	Text   string
	Bold   bool
	Color  string
	Font   string
	SizePt int
}

// Paragraph is a block of runs.
type Paragraph struct {
	Align Alignment
	Runs  []Run
}

// Cell is a table cell holding a single paragraph.
type Cell struct {
	Paragraph
	// Span is the number of grid columns the cell covers. Values below 1
	// are treated as 1.
	Span int
	// Shading is the background fill as hex, empty for none.
	Shading string
}

// Row is a table row.
type Row struct {
	Cells []*Cell
}

// AddCell appends a cell containing text formatted with run and returns it.
func (r *Row) AddCell(run Run, align Alignment) *Cell {
	c := &Cell{Paragraph: Paragraph{Align: align, Runs: []Run{run}}, Span: 1}
	r.Cells = append(r.Cells, c)
	return c
}

// Table is a grid with a fixed number of columns.
type Table struct {
	Cols int
	// ColWidth is the width of each grid column in twentieths of a point.
	ColWidth int
	Rows     []*Row
}

// AddRow appends an empty row.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.Rows = append(t.Rows, r)
	return r
}

type block interface {
	writeXML(w *xmlWriter)
}

func (p *Paragraph) writeXML(w *xmlWriter) { w.paragraph(p) }
func (t *Table) writeXML(w *xmlWriter)     { w.table(t) }

// Document is an in-memory document body. The zero value is not usable; call
// New.
type Document struct {
	font   string
	sizePt int
	body   []block
}

// New creates an empty document whose default run font and size are font
// and sizePt.
func New(font string, sizePt int) *Document {
	if sizePt <= 0 {
		sizePt = 11
	}
	return &Document{font: font, sizePt: sizePt}
}

// AddParagraph appends a paragraph with a single plain run.
func (d *Document) AddParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.Runs = []Run{{Text: text}}
	}
	d.body = append(d.body, p)
	return p
}

// AddBlank appends n empty paragraphs.
func (d *Document) AddBlank(n int) {
	for i := 0; i < n; i++ {
		d.AddParagraph("")
	}
}

// AddTable appends a table with cols grid columns.
func (d *Document) AddTable(cols int) *Table {
	if cols < 1 {
		cols = 1
	}
	t := &Table{Cols: cols, ColWidth: defaultTableWidth / cols}
	d.body = append(d.body, t)
	return t
}

// Paragraphs returns the top level paragraphs in order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.body {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns the tables in order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.body {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Write encodes the document as a .docx package.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/document.xml", d.documentXML()},
		{"word/styles.xml", d.stylesXML()},
	}

	for _, part := range parts {
		fw, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := fw.Write(part.data); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close package: %w", err)
	}
	return nil
}

// Save writes the document to path, creating parent directories. A partially
// written file is removed on failure.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (d *Document) documentXML() []byte {
	w := newXMLWriter()
	w.raw(xmlHeader)
	w.raw(`<w:document xmlns:w="` + nsMain + `" xmlns:r="` + nsRel + `"><w:body>`)
	for _, b := range d.body {
		b.writeXML(w)
	}
	w.raw(sectionXML)
	w.raw(`</w:body></w:document>`)
	return w.Bytes()
}

func (d *Document) stylesXML() []byte {
	w := newXMLWriter()
	w.raw(xmlHeader)
	w.raw(`<w:styles xmlns:w="` + nsMain + `"><w:docDefaults><w:rPrDefault><w:rPr>`)
	w.fonts(d.font)
	w.size(d.sizePt)
	w.raw(`</w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="240" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`)
	w.raw(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`)
	w.raw(`<w:style w:type="table" w:default="1" w:styleId="TableNormal"><w:name w:val="Normal Table"/><w:tblPr><w:tblInd w:w="0" w:type="dxa"/>` +
		`<w:tblCellMar><w:top w:w="0" w:type="dxa"/><w:left w:w="108" w:type="dxa"/><w:bottom w:w="0" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>`)
	w.raw(`</w:styles>`)
	return w.Bytes()
}
