// Package document lays out a costed quote as a commercial proposal and
// encodes it as DOCX or XLSX.
package document

import (
	"fmt"
	"time"

	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/quote"
)

const (
	DefaultSenderName     = "Команда Без названия"
	DefaultSenderContacts = "noNameCommand@example.com"

	headerShade = "CCCCCC"
	totalsShade = "EEEEEE"
)

// Align is horizontal alignment inside a paragraph or cell.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Cell struct {
	Text  string
	Align Align
	Bold  bool
	// Span is the number of grid columns the cell covers; 0 means 1.
	Span  int
	Shade string
}

func (c Cell) span() int {
	if c.Span < 1 {
		return 1
	}
	return c.Span
}

type Row struct {
	Cells []Cell
}

// Table is header row, one row per item, then the totals row.
type Table struct {
	Columns []float64 // relative widths
	Rows    []Row
}

type Paragraph struct {
	Text  string
	Label string // bold prefix, e.g. "Запрос: "
	Bold  bool
	Size  int // points; 0 is the encoder default
	Align Align
}

// Sender signs the proposal.
type Sender struct {
	Name     string
	Contacts string
}

func (s Sender) withDefaults() Sender {
	if s.Name == "" {
		s.Name = DefaultSenderName
	}
	if s.Contacts == "" {
		s.Contacts = DefaultSenderContacts
	}
	return s
}

// QuoteDocument is the format-neutral layout of a proposal.
type QuoteDocument struct {
	QuoteID int64
	Date    time.Time
	Title   Paragraph
	Heading Paragraph
	Intro   []Paragraph
	Table   Table
	Footer  []Paragraph
}

var tableHeader = []string{"№", "Наименование", "Артикул", "Кол-во", "Цена", "Сумма"}

// Build lays out q. A quote without items cannot be rendered.
func Build(q quote.CostedQuote, sender Sender, date time.Time) (QuoteDocument, error) {
	if len(q.Items) == 0 {
		return QuoteDocument{}, common.GenerationError("Список товаров пуст или некорректен", nil)
	}
	sender = sender.withDefaults()

	doc := QuoteDocument{
		QuoteID: q.ID,
		Date:    date,
		Title:   Paragraph{Text: "КОММЕРЧЕСКОЕ ПРЕДЛОЖЕНИЕ", Bold: true, Size: 16, Align: AlignCenter},
		Heading: Paragraph{Text: fmt.Sprintf("ТКП #%d", q.ID), Bold: true, Size: 13},
	}
	doc.Intro = []Paragraph{
		{Label: "Запрос: ", Text: q.Query},
		{Label: "Описание: ", Text: q.Description},
	}

	header := Row{}
	for _, h := range tableHeader {
		header.Cells = append(header.Cells, Cell{Text: h, Bold: true, Align: AlignCenter, Shade: headerShade})
	}
	rows := []Row{header}

	for i, it := range q.Items {
		article := it.Article
		if article == "" {
			article = "-"
		}
		rows = append(rows, Row{Cells: []Cell{
			{Text: fmt.Sprint(i + 1), Align: AlignCenter},
			{Text: it.Name},
			{Text: article, Align: AlignCenter},
			{Text: it.Count, Align: AlignCenter},
			{Text: it.UnitCost, Align: AlignRight},
			{Text: it.LineTotal, Align: AlignRight},
		}})
	}

	rows = append(rows, Row{Cells: []Cell{
		{Text: "ИТОГО:", Bold: true, Align: AlignRight, Span: 5, Shade: totalsShade},
		{Text: q.TotalCost, Bold: true, Align: AlignRight, Shade: totalsShade},
	}})
	doc.Table = Table{Columns: []float64{5, 40, 15, 10, 15, 15}, Rows: rows}

	if q.Notes != "" {
		doc.Footer = append(doc.Footer,
			Paragraph{Text: "Примечания:", Bold: true},
			Paragraph{Text: q.Notes},
		)
	}
	doc.Footer = append(doc.Footer,
		Paragraph{Label: "От: ", Text: sender.Name},
		Paragraph{Label: "Контакты: ", Text: sender.Contacts},
	)
	return doc, nil
}
