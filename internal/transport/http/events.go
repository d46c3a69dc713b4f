package http

import (
	"net/http"
	"time"

	"github.com/cimillas/ticket-ledger/internal/app"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/gorilla/mux"
)

type createEventRequest struct {
	Creator      string    `json:"creator" validate:"required"`
	BusinessID   string    `json:"business_id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description"`
	RoyaltySpec  string    `json:"royalty_spec"`
	Venue        string    `json:"venue"`
	Date         time.Time `json:"date" validate:"required"`
	TotalTickets uint64    `json:"total_tickets"`
	BasePrice    uint64    `json:"base_price"`
}

type deactivateEventRequest struct {
	Caller string `json:"caller" validate:"required"`
}

type eventResponse struct {
	Address      string    `json:"address"`
	Creator      string    `json:"creator"`
	BusinessID   string    `json:"business_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	RoyaltySpec  string    `json:"royalty_spec"`
	Venue        string    `json:"venue"`
	Date         time.Time `json:"date"`
	TotalTickets uint64    `json:"total_tickets"`
	TicketsSold  uint64    `json:"tickets_sold"`
	BasePrice    uint64    `json:"base_price"`
	IsActive     bool      `json:"is_active"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		Address:      e.Address,
		Creator:      e.Creator,
		BusinessID:   e.BusinessID,
		Name:         e.Name,
		Description:  e.Description,
		RoyaltySpec:  e.RoyaltySpec,
		Venue:        e.Venue,
		Date:         e.Date,
		TotalTickets: e.TotalTickets,
		TicketsSold:  e.TicketsSold,
		BasePrice:    e.BasePrice,
		IsActive:     e.IsActive,
	}
}

type availabilityResponse struct {
	EventAddress string `json:"event_address"`
	Total        uint64 `json:"total"`
	Sold         uint64 `json:"sold"`
	Remaining    uint64 `json:"remaining"`
	IsActive     bool   `json:"is_active"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	event, err := h.svc.Events.CreateEvent(r.Context(), app.CreateEventInput{
		Creator:      req.Creator,
		BusinessID:   req.BusinessID,
		Name:         req.Name,
		Description:  req.Description,
		RoyaltySpec:  req.RoyaltySpec,
		Venue:        req.Venue,
		Date:         req.Date,
		TotalTickets: req.TotalTickets,
		BasePrice:    req.BasePrice,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Events.GetEvent(r.Context(), mux.Vars(r)["event"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Events.Availability(r.Context(), mux.Vars(r)["event"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		EventAddress: a.EventAddress,
		Total:        a.Total,
		Sold:         a.Sold,
		Remaining:    a.Remaining,
		IsActive:     a.IsActive,
	})
}

func (h *Handler) DeactivateEvent(w http.ResponseWriter, r *http.Request) {
	var req deactivateEventRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	event, err := h.svc.Events.DeactivateEvent(r.Context(), app.DeactivateEventInput{
		Caller:       req.Caller,
		EventAddress: mux.Vars(r)["event"],
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}
