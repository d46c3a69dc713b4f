package app

import (
	"context"

	"github.com/cimillas/ticket-ledger/internal/clock"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// TicketRepository persists events and the tickets issued against them.
type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, address string) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) error
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	GetTicket(ctx context.Context, address string) (domain.Ticket, error)
	ListTicketsByOwner(ctx context.Context, owner string) ([]domain.Ticket, error)
	ListTicketsByEvent(ctx context.Context, eventAddress string) ([]domain.Ticket, error)
}

// TicketIssuer sells primary tickets.
type TicketIssuer struct {
	repo   TicketRepository
	clock  clock.Clock
	logger *logrus.Logger
}

// NewTicketIssuer builds a TicketIssuer stamping purchases with clk.
func NewTicketIssuer(repo TicketRepository, clk clock.Clock, logger *logrus.Logger) *TicketIssuer {
	return &TicketIssuer{
		repo:   repo,
		clock:  clk,
		logger: loggerOrDefault(logger),
	}
}

// PurchaseTicketInput describes a primary sale.
type PurchaseTicketInput struct {
	EventAddress string
	BusinessID   string
	Owner        string
	// Price of the primary sale; zero means the event's base price.
	Price uint64
}

// PurchaseTicket issues a new ticket against an active, unexpired event with
// remaining capacity.
func (s *TicketIssuer) PurchaseTicket(ctx context.Context, in PurchaseTicketInput) (ticket domain.Ticket, err error) {
	ctx, span := startSpan(ctx, "TicketIssuer.PurchaseTicket",
		attribute.String("event.address", in.EventAddress),
		attribute.String("ticket.business_id", in.BusinessID),
	)
	defer func() { endSpan(span, err) }()

	address, err := domain.TicketAddress(in.EventAddress, in.BusinessID)
	if err != nil {
		return domain.Ticket{}, err
	}

	now := s.clock.Now()

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, in.EventAddress)
		if err != nil {
			return err
		}
		if !event.IsActive {
			return domain.ErrEventNotActive
		}
		if !event.Date.After(now) {
			return domain.ErrEventExpired
		}
		if event.TicketsSold >= event.TotalTickets {
			return domain.ErrTicketNotAvailable
		}

		sold, err := domain.CheckedAdd(event.TicketsSold, 1)
		if err != nil {
			return err
		}

		price := in.Price
		if price == 0 {
			price = event.BasePrice
		}

		issued := domain.Ticket{
			Address:            address,
			EventAddress:       event.Address,
			Owner:              in.Owner,
			Seller:             event.Creator,
			BusinessID:         in.BusinessID,
			PurchaseDate:       now,
			Price:              price,
			ResaleCount:        0,
			AccumulatedRoyalty: 0,
			RoyaltyDistributed: false,
		}
		if err := s.repo.CreateTicket(txCtx, issued); err != nil {
			return err
		}

		event.TicketsSold = sold
		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		ticket = issued
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"event":  ticket.EventAddress,
		"ticket": ticket.Address,
		"owner":  ticket.Owner,
		"price":  ticket.Price,
	}).Info("ticket issued")
	return ticket, nil
}

// GetTicket returns the ticket stored at address.
func (s *TicketIssuer) GetTicket(ctx context.Context, address string) (domain.Ticket, error) {
	if !domain.ValidAddress(address) {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	return s.repo.GetTicket(ctx, address)
}

// ListTicketsByOwner returns the tickets currently held by owner.
func (s *TicketIssuer) ListTicketsByOwner(ctx context.Context, owner string) ([]domain.Ticket, error) {
	if owner == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTicketsByOwner(ctx, owner)
}

// ListTicketsByEvent returns the tickets issued for an event.
func (s *TicketIssuer) ListTicketsByEvent(ctx context.Context, eventAddress string) ([]domain.Ticket, error) {
	if !domain.ValidAddress(eventAddress) {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTicketsByEvent(ctx, eventAddress)
}
