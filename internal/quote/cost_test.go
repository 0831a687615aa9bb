package quote

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tkp/constants"
)

func item(name string, count int64, unit string) RawItem {
	return RawItem{Name: name, Count: count, UnitCost: decimal.RequireFromString(unit)}
}

func TestCost_SingleLine(t *testing.T) {
	q := Cost(RawExtraction{ID: 1, Items: []RawItem{item("Cable", 3, "150")}})

	require.Len(t, q.Items, 1)
	assert.Equal(t, "450 руб.", q.Items[0].LineTotal)
	assert.Equal(t, "150 руб.", q.Items[0].UnitCost)
	assert.Equal(t, "3", q.Items[0].Count)
	assert.Equal(t, "450 руб.", q.TotalCost)
	assert.Equal(t, 1, q.ItemsCount)
}

func TestCost_ThousandsBoundary(t *testing.T) {
	q := Cost(RawExtraction{Items: []RawItem{item("A", 2, "1234"), item("B", 1, "66")}})

	assert.Equal(t, "2 468 руб.", q.Items[0].LineTotal)
	assert.Equal(t, "66 руб.", q.Items[1].LineTotal)
	assert.Equal(t, "2 534 руб.", q.TotalCost)
	assert.True(t, q.Total().Equal(decimal.NewFromInt(2534)))
}

func TestCost_TotalIsExactSumOfLines(t *testing.T) {
	raw := RawExtraction{Items: []RawItem{
		item("A", 3, "0.1"),
		item("B", 7, "19.99"),
		item("C", 1000, "1.005"),
	}}
	q := Cost(raw)

	want := decimal.Zero
	for _, it := range raw.Items {
		want = want.Add(decimal.NewFromInt(it.Count).Mul(it.UnitCost))
	}
	assert.True(t, q.Total().Equal(want), "got %s want %s", q.Total(), want)
	assert.Equal(t, len(q.Items), q.ItemsCount)

	sum := decimal.Zero
	for _, l := range q.Items {
		sum = sum.Add(l.Amount())
	}
	assert.True(t, sum.Equal(q.Total()))
}

func TestCost_OrderIndependentTotal(t *testing.T) {
	a := Cost(RawExtraction{Items: []RawItem{item("A", 2, "1234"), item("B", 1, "66"), item("C", 5, "0.3")}})
	b := Cost(RawExtraction{Items: []RawItem{item("C", 5, "0.3"), item("A", 2, "1234"), item("B", 1, "66")}})

	assert.Equal(t, a.TotalCost, b.TotalCost)
	assert.Equal(t, "A", a.Items[0].Name)
	assert.Equal(t, "C", b.Items[0].Name)
}

func TestRestore_RecomputesCount(t *testing.T) {
	q := Restore(5, "medium", "q", "d", []CostedLineItem{{Name: "A"}, {Name: "B"}}, "10 руб.", "n")

	assert.Equal(t, 2, q.ItemsCount)
	assert.Equal(t, constants.ComplexityMedium, q.Complexity)
	assert.Equal(t, "10 руб.", q.TotalCost)
}

func TestNoResults_Message(t *testing.T) {
	assert.Equal(t, "No matching cables found", NoResults{Description: "No matching cables found"}.Message())
	assert.Equal(t, NoResultsMessage, NoResults{}.Message())
}
