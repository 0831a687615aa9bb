package document

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/quote"
)

func sampleQuote() quote.CostedQuote {
	return quote.Cost(quote.RawExtraction{
		ID:          42,
		Complexity:  "simple",
		Query:       "кабель & розетки",
		Description: "Подбор кабеля",
		Notes:       "Цены без НДС",
		Items: []quote.RawItem{
			{Name: "Кабель ВВГ", Article: "VVG-3", Count: 2, UnitCost: decimal.NewFromInt(1234)},
			{Name: "Розетка <двойная>", Count: 1, UnitCost: decimal.NewFromInt(66)},
		},
	})
}

func fixedRenderer() *Renderer {
	r := NewRenderer("", Sender{}, nil)
	r.now = func() time.Time { return time.Date(2025, 3, 7, 15, 0, 0, 0, time.UTC) }
	return r
}

func TestBuild_TableShape(t *testing.T) {
	q := sampleQuote()
	doc, err := Build(q, Sender{}, time.Now())
	require.NoError(t, err)

	rows := doc.Table.Rows
	require.Len(t, rows, q.ItemsCount+2)

	header := rows[0].Cells
	require.Len(t, header, 6)
	assert.Equal(t, "№", header[0].Text)
	assert.Equal(t, "Сумма", header[5].Text)

	first := rows[1].Cells
	assert.Equal(t, "1", first[0].Text)
	assert.Equal(t, "VVG-3", first[2].Text)
	assert.Equal(t, "2 468 руб.", first[5].Text)
	assert.Equal(t, AlignRight, first[5].Align)
	assert.Equal(t, "-", rows[2].Cells[2].Text)

	last := rows[len(rows)-1].Cells
	assert.Equal(t, "ИТОГО:", last[0].Text)
	assert.Equal(t, 5, last[0].Span)
	assert.Equal(t, q.TotalCost, last[len(last)-1].Text)
	assert.Equal(t, "2 534 руб.", last[len(last)-1].Text)
}

func TestBuild_FooterAndDefaults(t *testing.T) {
	doc, err := Build(sampleQuote(), Sender{}, time.Now())
	require.NoError(t, err)

	var texts []string
	for _, p := range doc.Footer {
		texts = append(texts, p.Label+p.Text)
	}
	assert.Equal(t, []string{"Примечания:", "Цены без НДС", "От: " + DefaultSenderName, "Контакты: " + DefaultSenderContacts}, texts)
	assert.Equal(t, "ТКП #42", doc.Heading.Text)
}

func TestBuild_IntroAlwaysPresent(t *testing.T) {
	q := sampleQuote()
	q.Query, q.Description = "", ""

	doc, err := Build(q, Sender{}, time.Now())
	require.NoError(t, err)
	require.Len(t, doc.Intro, 2)
	assert.Equal(t, "Запрос: ", doc.Intro[0].Label)
	assert.Empty(t, doc.Intro[0].Text)
	assert.Equal(t, "Описание: ", doc.Intro[1].Label)
}

func TestFilename_UsesUTCDate(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	// 01:30 in Moscow is still the previous day in UTC
	date := time.Date(2025, 3, 8, 1, 30, 0, 0, msk)
	assert.Equal(t, "tkp_42_2025-03-07.docx", Filename(42, date, "docx"))

	la := time.FixedZone("PST", -8*60*60)
	assert.Equal(t, "tkp_1_2025-03-08.xlsx", Filename(1, time.Date(2025, 3, 7, 17, 0, 0, 0, la), "xlsx"))
}

func TestResolveFormat(t *testing.T) {
	r := fixedRenderer()

	for _, tt := range []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "docx", true},
		{" XLSX ", "xlsx", true},
		{"pdf", "pdf", false},
	} {
		got, ok := r.ResolveFormat(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestBuild_NoItems(t *testing.T) {
	q := quote.Cost(quote.RawExtraction{ID: 1})
	_, err := Build(q, Sender{}, time.Now())
	assert.ErrorIs(t, err, common.ErrGeneration)
}

func TestRender_DOCX(t *testing.T) {
	q := sampleQuote()
	art, err := fixedRenderer().Render(context.Background(), q, Options{})
	require.NoError(t, err)

	assert.Equal(t, "tkp_42_2025-03-07.docx", art.Filename)
	assert.Equal(t, docxContentType, art.ContentType)

	zr, err := zip.NewReader(bytes.NewReader(art.Bytes), int64(len(art.Bytes)))
	require.NoError(t, err)

	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}
	require.Contains(t, names, "[Content_Types].xml")
	require.Contains(t, names, "word/document.xml")

	rc, err := names["word/document.xml"].Open()
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	_ = rc.Close()

	xml := string(body)
	assert.Contains(t, xml, "КОММЕРЧЕСКОЕ ПРЕДЛОЖЕНИЕ")
	assert.Contains(t, xml, "кабель &amp; розетки")
	assert.Contains(t, xml, "Розетка &lt;двойная&gt;")
	assert.Contains(t, xml, `<w:gridSpan w:val="5"/>`)
	assert.Contains(t, xml, `w:fill="CCCCCC"`)
	assert.Contains(t, xml, `w:fill="EEEEEE"`)
	assert.Equal(t, 6, strings.Count(xml, "<w:gridCol "))
	assert.Contains(t, xml, "Запрос: ")
	assert.Equal(t, q.ItemsCount+2, strings.Count(xml, "<w:tr>"))
	assert.Contains(t, xml, q.TotalCost)
}

func TestRender_XLSX(t *testing.T) {
	q := sampleQuote()
	art, err := fixedRenderer().Render(context.Background(), q, Options{Format: "XLSX", Sender: Sender{Name: "ООО Ромашка"}})
	require.NoError(t, err)
	assert.Equal(t, "tkp_42_2025-03-07.xlsx", art.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(art.Bytes))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)

	headerAt, totalsAt := -1, -1
	for i, r := range rows {
		if len(r) > 0 && r[0] == "№" {
			headerAt = i
		}
		if len(r) > 0 && r[0] == "ИТОГО:" {
			totalsAt = i
			assert.Equal(t, q.TotalCost, r[len(r)-1])
		}
	}
	require.GreaterOrEqual(t, headerAt, 0)
	assert.Equal(t, q.ItemsCount+1, totalsAt-headerAt)

	var footer []string
	for _, r := range rows[totalsAt+1:] {
		if len(r) > 0 {
			footer = append(footer, r[0])
		}
	}
	assert.Contains(t, footer, "От: ООО Ромашка")
	assert.Contains(t, footer, "Контакты: "+DefaultSenderContacts)
}

func TestRender_Errors(t *testing.T) {
	r := fixedRenderer()

	art, err := r.Render(context.Background(), quote.CostedQuote{ID: 1}, Options{})
	assert.ErrorIs(t, err, common.ErrGeneration)
	assert.Nil(t, art.Bytes)

	art, err = r.Render(context.Background(), sampleQuote(), Options{Format: "pdf"})
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.Equal(t, 400, common.HTTPStatus(err))
	assert.Nil(t, art.Bytes)
}

type failingEncoder struct{}

func (failingEncoder) Format() string { return "docx" }
func (failingEncoder) ContentType() string { return "x" }
func (failingEncoder) Encode(QuoteDocument) ([]byte, error) { return []byte("partial"), io.ErrShortWrite }

func TestRender_EncoderFailure(t *testing.T) {
	r := fixedRenderer()
	r.Register(failingEncoder{})

	art, err := r.Render(context.Background(), sampleQuote(), Options{})
	assert.ErrorIs(t, err, common.ErrGeneration)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Nil(t, art.Bytes)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"docx", "xlsx"}, fixedRenderer().Formats())
}
