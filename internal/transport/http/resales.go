package http

import (
	"net/http"
	"time"

	"github.com/cimillas/ticket-ledger/internal/app"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/gorilla/mux"
)

type resellTicketRequest struct {
	Seller        string `json:"seller" validate:"required"`
	Buyer         string `json:"buyer" validate:"required"`
	NewPrice      uint64 `json:"new_price"`
	ExpectedIndex *uint8 `json:"expected_index,omitempty"`
}

type resaleRecordResponse struct {
	Address       string    `json:"address"`
	TicketAddress string    `json:"ticket_address"`
	Index         uint8     `json:"index"`
	Seller        string    `json:"seller"`
	Buyer         string    `json:"buyer"`
	SaleDate      time.Time `json:"sale_date"`
	Price         uint64    `json:"price"`
}

func toResaleRecordResponse(rec domain.ResaleRecord) resaleRecordResponse {
	return resaleRecordResponse{
		Address:       rec.Address,
		TicketAddress: rec.TicketAddress,
		Index:         rec.Index,
		Seller:        rec.Seller,
		Buyer:         rec.Buyer,
		SaleDate:      rec.SaleDate,
		Price:         rec.Price,
	}
}

type resellTicketResponse struct {
	Ticket  ticketResponse       `json:"ticket"`
	Record  resaleRecordResponse `json:"record"`
	Royalty uint64               `json:"royalty"`
}

type payoutResponse struct {
	Beneficiary string `json:"beneficiary"`
	Percent     uint64 `json:"percent"`
	Amount      uint64 `json:"amount"`
}

type distributeRoyaltyRequest struct {
	Payer             string `json:"payer" validate:"required"`
	PrimarySeller     string `json:"primary_seller" validate:"required"`
	Platform          string `json:"platform" validate:"required"`
	SecondaryPlatform string `json:"secondary_platform" validate:"required"`
}

type distributeRoyaltyResponse struct {
	Ticket  ticketResponse   `json:"ticket"`
	Total   uint64           `json:"total"`
	Payouts []payoutResponse `json:"payouts"`
}

func (h *Handler) ResellTicket(w http.ResponseWriter, r *http.Request) {
	var req resellTicketRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	res, err := h.svc.Resales.ResellTicket(r.Context(), app.ResellTicketInput{
		TicketAddress: mux.Vars(r)["ticket"],
		Seller:        req.Seller,
		Buyer:         req.Buyer,
		NewPrice:      req.NewPrice,
		ExpectedIndex: req.ExpectedIndex,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resellTicketResponse{
		Ticket:  toTicketResponse(res.Ticket),
		Record:  toResaleRecordResponse(res.Record),
		Royalty: res.Royalty,
	})
}

func (h *Handler) ListResaleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Resales.ListResaleHistory(r.Context(), mux.Vars(r)["ticket"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	resp := make([]resaleRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toResaleRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DistributeRoyalty(w http.ResponseWriter, r *http.Request) {
	var req distributeRoyaltyRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	res, err := h.svc.Royalties.DistributeRoyalty(r.Context(), app.DistributeRoyaltyInput{
		TicketAddress:     mux.Vars(r)["ticket"],
		Payer:             req.Payer,
		PrimarySeller:     req.PrimarySeller,
		Platform:          req.Platform,
		SecondaryPlatform: req.SecondaryPlatform,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	payouts := make([]payoutResponse, 0, len(res.Payouts))
	for _, p := range res.Payouts {
		payouts = append(payouts, payoutResponse{Beneficiary: p.Beneficiary, Percent: p.Percent, Amount: p.Amount})
	}
	writeJSON(w, http.StatusOK, distributeRoyaltyResponse{
		Ticket:  toTicketResponse(res.Ticket),
		Total:   res.Total,
		Payouts: payouts,
	})
}
