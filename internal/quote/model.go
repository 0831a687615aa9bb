// Package quote turns model output into costed quotes: it validates the raw
// extraction, prices every line, and orchestrates the whole request.
package quote

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tkp/constants"
)

// NoResultsMessage is shown when the model found nothing and gave no reason.
const NoResultsMessage = "Товары не найдены. Попробуйте уточнить запрос."

// RawItem is one validated line of the model's extraction.
type RawItem struct {
	Name     string
	Article  string
	Count    int64
	UnitCost decimal.Decimal
}

// RawExtraction is the validated model output, before pricing.
type RawExtraction struct {
	ID          int64
	Complexity  constants.Complexity
	Query       string
	Description string
	Notes       string
	Items       []RawItem
}

// IsEmpty reports whether the model matched no items.
func (r RawExtraction) IsEmpty() bool { return len(r.Items) == 0 }

// CostedLineItem is a display-ready line. Amounts are formatted from exact
// decimal values computed before formatting.
type CostedLineItem struct {
	Name      string `json:"name"`
	Article   string `json:"article,omitempty"`
	Count     string `json:"count"`
	UnitCost  string `json:"unit_cost"`
	LineTotal string `json:"total_cost"`

	lineTotal decimal.Decimal
}

// Amount is the exact line total, zero for lines restored from display data.
func (l CostedLineItem) Amount() decimal.Decimal { return l.lineTotal }

// CostedQuote is the unit handed to the UI and to the document renderer.
// ItemsCount and TotalCost are derived from Items; build it with Cost or
// Restore.
type CostedQuote struct {
	ID          int64                `json:"id"`
	Complexity  constants.Complexity `json:"complexity"`
	Query       string               `json:"query"`
	Description string               `json:"description"`
	Items       []CostedLineItem     `json:"items"`
	ItemsCount  int                  `json:"items_count"`
	TotalCost   string               `json:"total_cost"`
	Notes       string               `json:"notes,omitempty"`

	total decimal.Decimal
}

// Total is the exact grand total behind TotalCost.
func (q CostedQuote) Total() decimal.Decimal { return q.total }

// NoResults is the valid "nothing matched" outcome. It is not an error.
type NoResults struct {
	Query       string
	Complexity  constants.Complexity
	Description string
	Notes       string
}

// Message is the model's own explanation, or a generic hint to rephrase.
func (n NoResults) Message() string {
	if n.Description != "" {
		return n.Description
	}
	return NoResultsMessage
}

// Outcome is the result of a successful pipeline run: exactly one of Quote
// and NoResults is set.
type Outcome struct {
	Quote     *CostedQuote
	NoResults *NoResults
}
