package http

import (
	"encoding/json"

	"budgetrip/internal/core"
)

// Wire shapes. Amounts travel as bare JSON numbers in major units
// ("-4.5"), encoded via json.Number so no float rounding sneaks in.

type lineItemPayload struct {
	ID               string      `json:"id"`
	Date             int64       `json:"date"`
	PaymentMethod    string      `json:"payment_method"`
	Description      string      `json:"description"`
	ResponsibleParty string      `json:"responsible_party"`
	Amount           json.Number `json:"amount"`
}

type eventPayload struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Date        int64       `json:"date"`
	Amount      json.Number `json:"amount"`
	LineItemIDs []string    `json:"line_item_ids"`
}

type accountPayload struct {
	Provider   string `json:"provider"`
	LastSynced int64  `json:"last_synced"`
}

type summaryPayload struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Total      json.Number             `json:"total"`
	ByCategory []categoryAmountPayload `json:"by_category"`
}

type categoryAmountPayload struct {
	Name   string      `json:"name"`
	Amount json.Number `json:"amount"`
}

func moneyNumber(m core.Money) json.Number {
	return json.Number(m.Decimal().String())
}

func lineItemToPayload(li core.LineItem) lineItemPayload {
	return lineItemPayload{
		ID:               li.ID,
		Date:             li.Date,
		PaymentMethod:    li.PaymentMethod,
		Description:      li.Description,
		ResponsibleParty: li.ResponsibleParty,
		Amount:           moneyNumber(li.Amount),
	}
}

func lineItemsToPayload(items []core.LineItem) []lineItemPayload {
	out := make([]lineItemPayload, 0, len(items))
	for _, li := range items {
		out = append(out, lineItemToPayload(li))
	}
	return out
}

func eventToPayload(e core.Event) eventPayload {
	ids := e.LineItemIDs
	if ids == nil {
		ids = []string{}
	}
	return eventPayload{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Date:        e.Date,
		Amount:      moneyNumber(e.Amount),
		LineItemIDs: ids,
	}
}

func eventsToPayload(events []core.Event) []eventPayload {
	out := make([]eventPayload, 0, len(events))
	for _, e := range events {
		out = append(out, eventToPayload(e))
	}
	return out
}

func summaryToPayload(s core.MonthSummary) summaryPayload {
	byCat := make([]categoryAmountPayload, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		byCat = append(byCat, categoryAmountPayload{Name: c.Name, Amount: moneyNumber(c.Amount)})
	}
	return summaryPayload{
		Year:       s.Year,
		Month:      s.Month,
		Total:      moneyNumber(s.Total),
		ByCategory: byCat,
	}
}
