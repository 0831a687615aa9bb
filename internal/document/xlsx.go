package document

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tkp/constants"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxSheet       = "ТКП"
)

// XLSXEncoder writes the proposal as a single-sheet workbook.
type XLSXEncoder struct{}

func (XLSXEncoder) Format() string { return constants.DocumentXLSX }
func (XLSXEncoder) ContentType() string { return xlsxContentType }

func (XLSXEncoder) Encode(doc QuoteDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	styles := newStyleCache(f)
	cols := len(doc.Table.Columns)
	if cols == 0 {
		cols = len(tableHeader)
	}

	row := 1
	writeLine := func(p Paragraph) error {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(xlsxSheet, cell, p.Label+p.Text); err != nil {
			return err
		}
		end, _ := excelize.CoordinatesToCellName(cols, row)
		if err := f.MergeCell(xlsxSheet, cell, end); err != nil {
			return err
		}
		st, err := styles.get(styleKey{bold: p.Bold || p.Label != "", align: p.Align, size: p.Size})
		if err != nil {
			return err
		}
		row++
		return f.SetCellStyle(xlsxSheet, cell, end, st)
	}

	lines := append([]Paragraph{doc.Title, doc.Heading}, doc.Intro...)
	for _, p := range lines {
		if err := writeLine(p); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}
	row++

	for _, r := range doc.Table.Rows {
		col := 1
		for _, c := range r.Cells {
			start, _ := excelize.CoordinatesToCellName(col, row)
			end, _ := excelize.CoordinatesToCellName(col+c.span()-1, row)
			if err := f.SetCellValue(xlsxSheet, start, c.Text); err != nil {
				return nil, fmt.Errorf("xlsx cell %s: %w", start, err)
			}
			if c.span() > 1 {
				if err := f.MergeCell(xlsxSheet, start, end); err != nil {
					return nil, fmt.Errorf("xlsx merge %s: %w", start, err)
				}
			}
			st, err := styles.get(styleKey{bold: c.Bold, align: c.Align, shade: c.Shade, border: true})
			if err != nil {
				return nil, fmt.Errorf("xlsx style: %w", err)
			}
			if err := f.SetCellStyle(xlsxSheet, start, end, st); err != nil {
				return nil, fmt.Errorf("xlsx style %s: %w", start, err)
			}
			col += c.span()
		}
		row++
	}
	row++

	for _, p := range doc.Footer {
		if err := writeLine(p); err != nil {
			return nil, fmt.Errorf("xlsx footer: %w", err)
		}
	}

	for i, w := range doc.Table.Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(xlsxSheet, name, name, w*0.9+4)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

type styleKey struct {
	bold   bool
	align  Align
	shade  string
	size   int
	border bool
}

type styleCache struct {
	f   *excelize.File
	ids map[styleKey]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[styleKey]int)}
}

func (s *styleCache) get(k styleKey) (int, error) {
	if id, ok := s.ids[k]; ok {
		return id, nil
	}
	st := &excelize.Style{
		Font:      &excelize.Font{Bold: k.bold},
		Alignment: &excelize.Alignment{Horizontal: jc(k.align), Vertical: "center", WrapText: true},
	}
	if k.size > 0 {
		st.Font.Size = float64(k.size)
	}
	if k.shade != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{k.shade}}
	}
	if k.border {
		st.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	s.ids[k] = id
	return id, nil
}
