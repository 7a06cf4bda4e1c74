package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budgetrip/internal/core"
	"budgetrip/internal/storage"
)

// handleListLineItems serves GET /api/line_items. The review client calls
// it with only_line_items_to_review=true; payment_method, start_time and
// end_time narrow the result further.
func (s *Server) handleListLineItems(w http.ResponseWriter, r *http.Request) {
	filter := storage.LineItemFilter{
		ToReviewOnly:  parseBoolParam(r, "only_line_items_to_review"),
		PaymentMethod: sanitizeInput(r.URL.Query().Get("payment_method")),
	}

	var err error
	if filter.StartTime, err = parseUnixParam(r, "start_time"); err != nil {
		badRequest(w, err.Error())
		return
	}
	if filter.EndTime, err = parseUnixParam(r, "end_time"); err != nil {
		badRequest(w, err.Error())
		return
	}

	items, err := s.lineItems.List(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "List line items failed", "error", err)
		internalError(w, "failed to list line items")
		return
	}

	writeData(w, http.StatusOK, lineItemsToPayload(items))
}

func (s *Server) handleGetLineItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	li, err := s.lineItems.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(w, "line item not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get line item failed", "line_item_id", id, "error", err)
		internalError(w, "failed to get line item")
		return
	}

	writeData(w, http.StatusOK, lineItemToPayload(li))
}

type createLineItemRequest struct {
	Date             int64       `json:"date"`
	PaymentMethod    string      `json:"payment_method"`
	Description      string      `json:"description"`
	ResponsibleParty string      `json:"responsible_party"`
	Amount           json.Number `json:"amount"`
}

// handleCreateLineItem serves POST /api/line_items for manual entries;
// provider transactions arrive through the refresh loop instead.
func (s *Server) handleCreateLineItem(w http.ResponseWriter, r *http.Request) {
	var req createLineItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		unprocessable(w, "invalid amount")
		return
	}

	li := core.LineItem{
		Date:             req.Date,
		PaymentMethod:    sanitizeInput(req.PaymentMethod),
		Description:      sanitizeInput(req.Description),
		ResponsibleParty: sanitizeInput(req.ResponsibleParty),
		Amount:           amount,
	}

	id, err := s.lineItems.Create(r.Context(), li)
	if err != nil {
		unprocessable(w, err.Error())
		return
	}

	writeData(w, http.StatusCreated, map[string]string{"id": id})
}

// handleDeleteLineItem removes an unreviewed line item. Items attached
// to an event cannot be deleted directly; delete the event first.
func (s *Server) handleDeleteLineItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.lineItems.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(w, "line item not found or attached to an event")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete line item failed", "line_item_id", id, "error", err)
		internalError(w, "failed to delete line item")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"id": id})
}
