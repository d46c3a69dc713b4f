package app

import (
	"context"

	"github.com/cimillas/ticket-ledger/internal/clock"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ResaleRepository persists tickets and their resale history.
type ResaleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, address string) (domain.Event, error)
	GetTicketForUpdate(ctx context.Context, address string) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, ticket domain.Ticket) error
	CreateResaleRecord(ctx context.Context, record domain.ResaleRecord) error
	ListResaleRecords(ctx context.Context, ticketAddress string) ([]domain.ResaleRecord, error)
}

// ResaleEngine transfers tickets between owners on the secondary market.
type ResaleEngine struct {
	repo   ResaleRepository
	clock  clock.Clock
	logger *logrus.Logger
}

// NewResaleEngine builds a ResaleEngine stamping resales with clk.
func NewResaleEngine(repo ResaleRepository, clk clock.Clock, logger *logrus.Logger) *ResaleEngine {
	return &ResaleEngine{
		repo:   repo,
		clock:  clk,
		logger: loggerOrDefault(logger),
	}
}

// ResellTicketInput describes a secondary sale.
type ResellTicketInput struct {
	TicketAddress string
	Seller        string
	Buyer         string
	NewPrice      uint64
	// ExpectedIndex is the resale index the caller believes is next. It is
	// only logged on mismatch; the history address always uses the stored count.
	ExpectedIndex *uint8
}

// ResellTicketResult holds the updated ticket, its history record and the royalty accrued.
type ResellTicketResult struct {
	Ticket  domain.Ticket
	Record  domain.ResaleRecord
	Royalty uint64
}

// ResellTicket hands the ticket to a new owner, snapshots the previous state
// into the resale history and accrues royalty on the new price.
func (e *ResaleEngine) ResellTicket(ctx context.Context, in ResellTicketInput) (result ResellTicketResult, err error) {
	ctx, span := startSpan(ctx, "ResaleEngine.ResellTicket", attribute.String("ticket.address", in.TicketAddress))
	defer func() { endSpan(span, err) }()

	if !domain.ValidAddress(in.TicketAddress) {
		return ResellTicketResult{}, domain.ErrInvalidID
	}

	now := e.clock.Now()

	err = e.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := e.repo.GetTicketForUpdate(txCtx, in.TicketAddress)
		if err != nil {
			return err
		}
		event, err := e.repo.GetEvent(txCtx, ticket.EventAddress)
		if err != nil {
			return err
		}

		if in.ExpectedIndex != nil && *in.ExpectedIndex != ticket.ResaleCount {
			e.logger.WithContext(txCtx).WithFields(logrus.Fields{
				"ticket":   ticket.Address,
				"expected": *in.ExpectedIndex,
				"actual":   ticket.ResaleCount,
			}).Warn("resale index differs from caller expectation")
		}

		historyAddress, err := domain.HistoryAddress(ticket.Address, ticket.ResaleCount)
		if err != nil {
			return err
		}
		record := domain.ResaleRecord{
			Address:       historyAddress,
			TicketAddress: ticket.Address,
			Index:         ticket.ResaleCount,
			Seller:        ticket.Seller,
			Buyer:         ticket.Owner,
			SaleDate:      ticket.PurchaseDate,
			Price:         ticket.Price,
		}
		if err := e.repo.CreateResaleRecord(txCtx, record); err != nil {
			return err
		}

		royalty, err := event.RoyaltySplit().Accrue(in.NewPrice)
		if err != nil {
			return err
		}
		accumulated, err := domain.CheckedAdd(ticket.AccumulatedRoyalty, royalty)
		if err != nil {
			return err
		}
		count, err := domain.CheckedIncrement8(ticket.ResaleCount)
		if err != nil {
			return err
		}

		ticket.AccumulatedRoyalty = accumulated
		ticket.Owner = in.Buyer
		ticket.Seller = in.Seller
		ticket.PurchaseDate = now
		ticket.Price = in.NewPrice
		ticket.ResaleCount = count
		if err := e.repo.UpdateTicket(txCtx, ticket); err != nil {
			return err
		}

		result = ResellTicketResult{Ticket: ticket, Record: record, Royalty: royalty}
		return nil
	})
	if err != nil {
		return ResellTicketResult{}, err
	}

	e.logger.WithContext(ctx).WithFields(logrus.Fields{
		"ticket":      result.Ticket.Address,
		"index":       result.Record.Index,
		"price":       result.Ticket.Price,
		"royalty":     result.Royalty,
		"accumulated": result.Ticket.AccumulatedRoyalty,
	}).Info("ticket resold")
	return result, nil
}

// ListResaleHistory returns a ticket's resale records ordered by index.
func (e *ResaleEngine) ListResaleHistory(ctx context.Context, ticketAddress string) ([]domain.ResaleRecord, error) {
	if !domain.ValidAddress(ticketAddress) {
		return nil, domain.ErrInvalidID
	}
	return e.repo.ListResaleRecords(ctx, ticketAddress)
}
