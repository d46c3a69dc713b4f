package http

import (
	"net/http"
	"time"

	"github.com/cimillas/ticket-ledger/internal/app"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/gorilla/mux"
)

type purchaseTicketRequest struct {
	BusinessID string `json:"business_id" validate:"required"`
	Owner      string `json:"owner" validate:"required"`
	Price      uint64 `json:"price"`
}

type ticketResponse struct {
	Address            string    `json:"address"`
	EventAddress       string    `json:"event_address"`
	Owner              string    `json:"owner"`
	Seller             string    `json:"seller"`
	BusinessID         string    `json:"business_id"`
	PurchaseDate       time.Time `json:"purchase_date"`
	Price              uint64    `json:"price"`
	ResaleCount        uint8     `json:"resale_count"`
	AccumulatedRoyalty uint64    `json:"accumulated_royalty"`
	RoyaltyDistributed bool      `json:"royalty_distributed"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		Address:            t.Address,
		EventAddress:       t.EventAddress,
		Owner:              t.Owner,
		Seller:             t.Seller,
		BusinessID:         t.BusinessID,
		PurchaseDate:       t.PurchaseDate,
		Price:              t.Price,
		ResaleCount:        t.ResaleCount,
		AccumulatedRoyalty: t.AccumulatedRoyalty,
		RoyaltyDistributed: t.RoyaltyDistributed,
	}
}

func toTicketResponses(tickets []domain.Ticket) []ticketResponse {
	resp := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, toTicketResponse(t))
	}
	return resp
}

func (h *Handler) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	var req purchaseTicketRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	ticket, err := h.svc.Tickets.PurchaseTicket(r.Context(), app.PurchaseTicketInput{
		EventAddress: mux.Vars(r)["event"],
		BusinessID:   req.BusinessID,
		Owner:        req.Owner,
		Price:        req.Price,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTicketResponse(ticket))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.svc.Tickets.GetTicket(r.Context(), mux.Vars(r)["ticket"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketResponse(ticket))
}

func (h *Handler) ListTicketsByEvent(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.Tickets.ListTicketsByEvent(r.Context(), mux.Vars(r)["event"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketResponses(tickets))
}

func (h *Handler) ListTicketsByOwner(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.Tickets.ListTicketsByOwner(r.Context(), mux.Vars(r)["owner"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketResponses(tickets))
}
