package quote

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tkp/constants"
	"github.com/joseph-ayodele/tkp/internal/pricing"
)

// Cost prices a validated extraction. Item order is preserved.
func Cost(raw RawExtraction) CostedQuote {
	items := make([]CostedLineItem, 0, len(raw.Items))
	totals := make([]decimal.Decimal, 0, len(raw.Items))

	for _, it := range raw.Items {
		lt := pricing.LineTotal(it.Count, it.UnitCost)
		totals = append(totals, lt)
		items = append(items, CostedLineItem{
			Name:      it.Name,
			Article:   it.Article,
			Count:     pricing.FormatCount(it.Count),
			UnitCost:  pricing.FormatAmount(it.UnitCost),
			LineTotal: pricing.FormatAmount(lt),
			lineTotal: lt,
		})
	}

	total := pricing.Sum(totals)
	return CostedQuote{
		ID:          raw.ID,
		Complexity:  raw.Complexity,
		Query:       raw.Query,
		Description: raw.Description,
		Items:       items,
		ItemsCount:  len(items),
		TotalCost:   pricing.FormatAmount(total),
		Notes:       raw.Notes,
		total:       total,
	}
}

// Restore rebuilds a quote from display data sent back by a client (the
// document download flow). Amounts are taken as already formatted; only
// ItemsCount is recomputed.
func Restore(id int64, complexity string, query, description string, items []CostedLineItem, totalCost, notes string) CostedQuote {
	c, _ := constants.CanonicalizeComplexity(complexity)
	cp := append([]CostedLineItem(nil), items...)
	return CostedQuote{
		ID:          id,
		Complexity:  c,
		Query:       query,
		Description: description,
		Items:       cp,
		ItemsCount:  len(cp),
		TotalCost:   totalCost,
		Notes:       notes,
	}
}
