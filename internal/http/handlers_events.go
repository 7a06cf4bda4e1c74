package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"budgetrip/internal/core"
	"budgetrip/internal/storage"
)

type createEventRequest struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Date        int64       `json:"date"`
	Amount      json.Number `json:"amount"`
	LineItemIDs []string    `json:"line_item_ids"`
}

// handleCreateEvent serves POST /api/events: the review submission. The
// named line items are marked reviewed and the event is queued for
// export. Omitting the amount sums the line items instead.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSONBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	var amount core.Money
	if req.Amount.String() != "" {
		var err error
		if amount, err = core.ParseAmount(req.Amount.String()); err != nil {
			unprocessable(w, "invalid amount")
			return
		}
	}

	e := core.Event{
		Name:        sanitizeInput(req.Name),
		Category:    sanitizeInput(req.Category),
		Date:        req.Date,
		Amount:      amount,
		LineItemIDs: req.LineItemIDs,
	}

	id, err := s.events.Create(r.Context(), e)
	if errors.Is(err, storage.ErrNotFound) {
		unprocessable(w, "one or more line items not found or already reviewed")
		return
	}
	if err != nil {
		unprocessable(w, err.Error())
		return
	}

	s.invalidateSummaries()

	writeData(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List events failed", "error", err)
		internalError(w, "failed to list events")
		return
	}

	writeData(w, http.StatusOK, eventsToPayload(events))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	e, err := s.events.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(w, "event not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get event failed", "event_id", id, "error", err)
		internalError(w, "failed to get event")
		return
	}

	writeData(w, http.StatusOK, eventToPayload(e))
}

// handleDeleteEvent removes an event and returns its line items to the
// review pool.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.events.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(w, "event not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete event failed", "event_id", id, "error", err)
		internalError(w, "failed to delete event")
		return
	}

	s.invalidateSummaries()

	writeData(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.events.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories failed", "error", err)
		internalError(w, "failed to list categories")
		return
	}
	if cats == nil {
		cats = []string{}
	}

	writeData(w, http.StatusOK, cats)
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	name := sanitizeInput(req.Name)
	if err := s.events.AddCategory(r.Context(), name); err != nil {
		unprocessable(w, err.Error())
		return
	}

	writeData(w, http.StatusCreated, map[string]string{"name": name})
}

// handleSummary serves GET /api/summary?year=&month=, cached briefly
// since the review client polls it.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	params := parseMonthParams(r)
	if params.Month < 1 || params.Month > 12 {
		badRequest(w, "month must be between 1 and 12")
		return
	}

	key := strconv.Itoa(params.Year) + "-" + strconv.Itoa(params.Month)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "year", params.Year, "month", params.Month)
		writeData(w, http.StatusOK, summaryToPayload(cached))
		return
	}

	summary, err := s.events.Summary(r.Context(), params.Year, params.Month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month summary failed",
			"year", params.Year, "month", params.Month, "error", err)
		internalError(w, "failed to compute summary")
		return
	}

	s.summaryCache.Set(key, summary)
	writeData(w, http.StatusOK, summaryToPayload(summary))
}
