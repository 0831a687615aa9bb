package server

import (
	"github.com/joseph-ayodele/tkp/internal/quote"
)

type llmRequest struct {
	Prompt string `json:"prompt"`
}

type foundItem struct {
	Name      string `json:"name"`
	Article   string `json:"article,omitempty"`
	Count     string `json:"count"`
	UnitCost  string `json:"unit_cost"`
	TotalCost string `json:"total_cost"`
}

type responseData struct {
	FoundItems []foundItem `json:"found_items"`
	ItemsCount int         `json:"items_count"`
	TotalCost  string      `json:"total_cost"`
	// Description carries the model's additional notes.
	Description string `json:"description,omitempty"`
}

type quoteBody struct {
	ID              int64         `json:"id"`
	Complexity      string        `json:"complexity"`
	ComplexityLabel string        `json:"complexity_label,omitempty"`
	ComplexityColor string        `json:"complexity_color,omitempty"`
	Query           string        `json:"query"`
	Description     string        `json:"description"`
	Response        *responseData `json:"response"`
}

type llmResponse struct {
	Response quoteBody `json:"response"`
}

// tkpPayload is a quote previously returned by /api/llm plus the sender.
type tkpPayload struct {
	quoteBody
	SenderName     string `json:"senderName"`
	SenderContacts string `json:"senderContacts"`
}

type noResultsDetails struct {
	Query      string `json:"query"`
	Complexity string `json:"complexity"`
	Notes      string `json:"notes,omitempty"`
}

type errorBody struct {
	Error       string            `json:"error"`
	RawResponse string            `json:"raw_response,omitempty"`
	Details     *noResultsDetails `json:"details,omitempty"`
}

func toQuoteBody(q quote.CostedQuote) quoteBody {
	items := make([]foundItem, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, foundItem{
			Name:      it.Name,
			Article:   it.Article,
			Count:     it.Count,
			UnitCost:  it.UnitCost,
			TotalCost: it.LineTotal,
		})
	}
	return quoteBody{
		ID:              q.ID,
		Complexity:      string(q.Complexity),
		ComplexityLabel: q.Complexity.Label(),
		ComplexityColor: q.Complexity.Color(),
		Query:           q.Query,
		Description:     q.Description,
		Response: &responseData{
			FoundItems:  items,
			ItemsCount:  q.ItemsCount,
			TotalCost:   q.TotalCost,
			Description: q.Notes,
		},
	}
}

func (b quoteBody) toQuote() quote.CostedQuote {
	items := make([]quote.CostedLineItem, 0, len(b.Response.FoundItems))
	for _, it := range b.Response.FoundItems {
		items = append(items, quote.CostedLineItem{
			Name:      it.Name,
			Article:   it.Article,
			Count:     it.Count,
			UnitCost:  it.UnitCost,
			LineTotal: it.TotalCost,
		})
	}
	return quote.Restore(b.ID, b.Complexity, b.Query, b.Description, items, b.Response.TotalCost, b.Response.Description)
}
