package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/cimillas/ticket-ledger/internal/clock"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/cimillas/ticket-ledger/internal/storage/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store       *memory.Store
	clock       *clock.Manual
	logger      *logrus.Logger
	registry    *EventRegistry
	issuer      *TicketIssuer
	engine      *ResaleEngine
	distributor *RoyaltyDistributor
	accounts    *AccountService
}

func newFixture(t *testing.T, distributorOpts ...RoyaltyDistributorOption) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	clk := clock.NewManual(testNow)
	return &fixture{
		store:       store,
		clock:       clk,
		logger:      logger,
		registry:    NewEventRegistry(store, logger),
		issuer:      NewTicketIssuer(store, clk, logger),
		engine:      NewResaleEngine(store, clk, logger),
		distributor: NewRoyaltyDistributor(store, store, clk, logger, distributorOpts...),
		accounts:    NewAccountService(store, logger),
	}
}

func (f *fixture) createEvent(t *testing.T, spec string, total uint64) domain.Event {
	t.Helper()
	event, err := f.registry.CreateEvent(context.Background(), CreateEventInput{
		Creator:      "alice",
		BusinessID:   "concert-" + spec,
		Name:         "Concert",
		Description:  "Open air",
		RoyaltySpec:  spec,
		Venue:        "Arena",
		Date:         testNow.Add(30 * 24 * time.Hour),
		TotalTickets: total,
		BasePrice:    500,
	})
	require.NoError(t, err)
	return event
}

func (f *fixture) purchase(t *testing.T, event domain.Event, id, owner string) domain.Ticket {
	t.Helper()
	ticket, err := f.issuer.PurchaseTicket(context.Background(), PurchaseTicketInput{
		EventAddress: event.Address,
		BusinessID:   id,
		Owner:        owner,
	})
	require.NoError(t, err)
	return ticket
}

func (f *fixture) resell(t *testing.T, ticket domain.Ticket, seller, buyer string, price uint64) ResellTicketResult {
	t.Helper()
	res, err := f.engine.ResellTicket(context.Background(), ResellTicketInput{
		TicketAddress: ticket.Address,
		Seller:        seller,
		Buyer:         buyer,
		NewPrice:      price,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) balance(t *testing.T, account string) uint64 {
	t.Helper()
	acc, err := f.accounts.Balance(context.Background(), account)
	require.NoError(t, err)
	return acc.Balance
}
