package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/tkp/constants"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// table width in twentieths of a point (A4 minus margins)
const docxTableWidth = 9638

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// DOCXEncoder writes a minimal WordprocessingML package.
type DOCXEncoder struct{}

func (DOCXEncoder) Format() string { return constants.DocumentDOCX }
func (DOCXEncoder) ContentType() string { return docxContentType }

func (DOCXEncoder) Encode(doc QuoteDocument) ([]byte, error) {
	var body strings.Builder
	writeParagraph(&body, doc.Title)
	writeParagraph(&body, doc.Heading)
	for _, p := range doc.Intro {
		writeParagraph(&body, p)
	}
	writeTable(&body, doc.Table)
	for _, p := range doc.Footer {
		writeParagraph(&body, p)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", documentXML(body.String())},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docx create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("docx write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx close: %w", err)
	}
	return buf.Bytes(), nil
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="709" w:footer="709" w:gutter="0"/></w:sectPr>` +
		`</w:body></w:document>`
}

func writeParagraph(b *strings.Builder, p Paragraph) {
	b.WriteString("<w:p>")
	if p.Align != AlignLeft {
		b.WriteString(`<w:pPr><w:jc w:val="` + jc(p.Align) + `"/></w:pPr>`)
	}
	if p.Label != "" {
		writeRun(b, p.Label, true, p.Size)
	}
	writeRun(b, p.Text, p.Bold, p.Size)
	b.WriteString("</w:p>")
}

func writeRun(b *strings.Builder, text string, bold bool, size int) {
	b.WriteString("<w:r>")
	if bold || size > 0 {
		b.WriteString("<w:rPr>")
		if bold {
			b.WriteString("<w:b/>")
		}
		if size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, size*2)
		}
		b.WriteString("</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(b, []byte(text))
	b.WriteString("</w:t></w:r>")
}

func writeTable(b *strings.Builder, t Table) {
	widths := columnTwips(t.Columns)

	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="` + fmt.Sprint(docxTableWidth) + `" w:type="dxa"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(b, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="000000"/>`, side)
	}
	b.WriteString(`</w:tblBorders></w:tblPr><w:tblGrid>`)
	for _, w := range widths {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, w)
	}
	b.WriteString("</w:tblGrid>")

	for _, row := range t.Rows {
		b.WriteString("<w:tr>")
		col := 0
		for _, c := range row.Cells {
			w := 0
			for i := col; i < col+c.span() && i < len(widths); i++ {
				w += widths[i]
			}
			col += c.span()

			fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/>`, w)
			if c.span() > 1 {
				fmt.Fprintf(b, `<w:gridSpan w:val="%d"/>`, c.span())
			}
			if c.Shade != "" {
				fmt.Fprintf(b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, c.Shade)
			}
			b.WriteString("</w:tcPr>")
			writeParagraph(b, Paragraph{Text: c.Text, Bold: c.Bold, Align: c.Align})
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
}

func columnTwips(rel []float64) []int {
	var sum float64
	for _, r := range rel {
		sum += r
	}
	out := make([]int, len(rel))
	if sum == 0 {
		return out
	}
	for i, r := range rel {
		out[i] = int(float64(docxTableWidth) * r / sum)
	}
	return out
}

func jc(a Align) string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}
