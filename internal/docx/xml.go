package docx

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

const (
	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	// A4 with one inch margins leaves 9026 twips of text width.
	defaultTableWidth = 9026
)

const contentTypesXML = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const packageRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const sectionXML = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
	`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`

type xmlWriter struct {
	bytes.Buffer
}

func newXMLWriter() *xmlWriter {
	return &xmlWriter{}
}

func (w *xmlWriter) raw(s string) {
	w.WriteString(s)
}

func (w *xmlWriter) escape(s string) {
	// EscapeText only fails when the underlying writer does.
	_ = xml.EscapeText(w, []byte(s))
}

func (w *xmlWriter) attr(name, value string) {
	w.raw(" " + name + `="`)
	w.escape(value)
	w.raw(`"`)
}

func (w *xmlWriter) fonts(font string) {
	if font == "" {
		return
	}
	w.raw("<w:rFonts")
	for _, a := range []string{"w:ascii", "w:hAnsi", "w:eastAsia", "w:cs"} {
		w.attr(a, font)
	}
	w.raw("/>")
}

func (w *xmlWriter) size(pt int) {
	if pt <= 0 {
		return
	}
	half := strconv.Itoa(pt * 2)
	w.raw(`<w:sz w:val="` + half + `"/><w:szCs w:val="` + half + `"/>`)
}

func (w *xmlWriter) paragraph(p *Paragraph) {
	w.raw("<w:p>")
	if p.Align != AlignDefault {
		w.raw(`<w:pPr><w:jc w:val="` + string(p.Align) + `"/></w:pPr>`)
	}
	for _, r := range p.Runs {
		w.run(r)
	}
	w.raw("</w:p>")
}

func (w *xmlWriter) run(r Run) {
	w.raw("<w:r>")
	if r.Bold || r.Color != "" || r.Font != "" || r.SizePt > 0 {
		w.raw("<w:rPr>")
		w.fonts(r.Font)
		if r.Bold {
			w.raw("<w:b/><w:bCs/>")
		}
		if r.Color != "" {
			w.raw("<w:color")
			w.attr("w:val", r.Color)
			w.raw("/>")
		}
		w.size(r.SizePt)
		w.raw("</w:rPr>")
	}

	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			w.raw("<w:br/>")
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				w.raw("<w:tab/>")
			}
			if seg == "" {
				continue
			}
			w.raw(`<w:t xml:space="preserve">`)
			w.escape(seg)
			w.raw("</w:t>")
		}
	}
	w.raw("</w:r>")
}

func (w *xmlWriter) table(t *Table) {
	width := t.ColWidth
	if width <= 0 {
		width = defaultTableWidth / max(t.Cols, 1)
	}
	colW := strconv.Itoa(width)

	w.raw(`<w:tbl><w:tblPr><w:tblStyle w:val="TableNormal"/><w:tblW w:w="0" w:type="auto"/><w:tblLook w:val="04A0"/></w:tblPr><w:tblGrid>`)
	for i := 0; i < t.Cols; i++ {
		w.raw(`<w:gridCol w:w="` + colW + `"/>`)
	}
	w.raw("</w:tblGrid>")

	for _, row := range t.Rows {
		w.raw("<w:tr>")
		for _, c := range row.Cells {
			span := max(c.Span, 1)
			w.raw(`<w:tc><w:tcPr><w:tcW w:w="` + strconv.Itoa(width*span) + `" w:type="dxa"/>`)
			if span > 1 {
				w.raw(`<w:gridSpan w:val="` + strconv.Itoa(span) + `"/>`)
			}
			if c.Shading != "" {
				w.raw(`<w:shd w:val="clear" w:color="auto"`)
				w.attr("w:fill", c.Shading)
				w.raw("/>")
			}
			w.raw("</w:tcPr>")
			w.paragraph(&c.Paragraph)
			w.raw("</w:tc>")
		}
		w.raw("</w:tr>")
	}
	w.raw("</w:tbl>")
}
