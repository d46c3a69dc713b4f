// Package http exposes the ledger operations as a JSON API.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/cimillas/ticket-ledger/internal/app"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type EventService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	DeactivateEvent(ctx context.Context, in app.DeactivateEventInput) (domain.Event, error)
	GetEvent(ctx context.Context, address string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	Availability(ctx context.Context, address string) (app.Availability, error)
}

type TicketService interface {
	PurchaseTicket(ctx context.Context, in app.PurchaseTicketInput) (domain.Ticket, error)
	GetTicket(ctx context.Context, address string) (domain.Ticket, error)
	ListTicketsByOwner(ctx context.Context, owner string) ([]domain.Ticket, error)
	ListTicketsByEvent(ctx context.Context, eventAddress string) ([]domain.Ticket, error)
}

type ResaleService interface {
	ResellTicket(ctx context.Context, in app.ResellTicketInput) (app.ResellTicketResult, error)
	ListResaleHistory(ctx context.Context, ticketAddress string) ([]domain.ResaleRecord, error)
}

type RoyaltyService interface {
	DistributeRoyalty(ctx context.Context, in app.DistributeRoyaltyInput) (app.DistributeRoyaltyResult, error)
}

type AccountService interface {
	Balance(ctx context.Context, accountID string) (domain.Account, error)
}

// Services groups the operations the router dispatches to.
type Services struct {
	Events    EventService
	Tickets   TicketService
	Resales   ResaleService
	Royalties RoyaltyService
	Accounts  AccountService
}

type Handler struct {
	svc      Services
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewHandler(svc Services, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{svc: svc, validate: validate, logger: logger}
}

// NewRouter registers every ledger route on a gorilla/mux router.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = NotFoundHandler()
	router.MethodNotAllowedHandler = MethodNotAllowedHandler()

	router.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	router.HandleFunc("/events", h.CreateEvent).Methods(http.MethodPost)
	router.HandleFunc("/events", h.ListEvents).Methods(http.MethodGet)
	router.HandleFunc("/events/{event}", h.GetEvent).Methods(http.MethodGet)
	router.HandleFunc("/events/{event}/availability", h.Availability).Methods(http.MethodGet)
	router.HandleFunc("/events/{event}/deactivate", h.DeactivateEvent).Methods(http.MethodPost)
	router.HandleFunc("/events/{event}/tickets", h.PurchaseTicket).Methods(http.MethodPost)
	router.HandleFunc("/events/{event}/tickets", h.ListTicketsByEvent).Methods(http.MethodGet)

	router.HandleFunc("/tickets/{ticket}", h.GetTicket).Methods(http.MethodGet)
	router.HandleFunc("/owners/{owner}/tickets", h.ListTicketsByOwner).Methods(http.MethodGet)
	router.HandleFunc("/tickets/{ticket}/resales", h.ResellTicket).Methods(http.MethodPost)
	router.HandleFunc("/tickets/{ticket}/resales", h.ListResaleHistory).Methods(http.MethodGet)
	router.HandleFunc("/tickets/{ticket}/royalty/distribute", h.DistributeRoyalty).Methods(http.MethodPost)

	router.HandleFunc("/accounts/{account}", h.GetAccount).Methods(http.MethodGet)

	return router
}
