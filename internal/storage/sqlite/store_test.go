package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventDate = time.Date(2026, time.June, 1, 20, 0, 0, 0, time.UTC)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedEvent(t *testing.T, store *Store, businessID string) domain.Event {
	t.Helper()
	address, err := domain.EventAddress("alice", businessID)
	require.NoError(t, err)
	event := domain.Event{
		Address:      address,
		Creator:      "alice",
		BusinessID:   businessID,
		Name:         "Concert",
		Description:  "Open air",
		RoyaltySpec:  "10,5,5",
		Venue:        "Arena",
		Date:         eventDate,
		TotalTickets: math.MaxUint64,
		BasePrice:    math.MaxUint64,
		IsActive:     true,
	}
	require.NoError(t, store.CreateEvent(context.Background(), event))
	return event
}

func seedTicket(t *testing.T, store *Store, event domain.Event, businessID, owner string) domain.Ticket {
	t.Helper()
	address, err := domain.TicketAddress(event.Address, businessID)
	require.NoError(t, err)
	ticket := domain.Ticket{
		Address:      address,
		EventAddress: event.Address,
		Owner:        owner,
		Seller:       event.Creator,
		BusinessID:   businessID,
		PurchaseDate: eventDate.Add(-time.Hour),
		Price:        500,
	}
	require.NoError(t, store.CreateTicket(context.Background(), ticket))
	return ticket
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("")
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	applied, err := store.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	event := seedEvent(t, store, "show-1")

	got, err := store.GetEvent(ctx, event.Address)
	require.NoError(t, err)
	assert.Equal(t, event, got)

	assert.ErrorIs(t, store.CreateEvent(ctx, event), domain.ErrDuplicateRecord)

	_, err = store.GetEvent(ctx, "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	_, err = store.GetEvent(ctx, "not-an-address")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	event.TicketsSold = 7
	event.IsActive = false
	require.NoError(t, store.UpdateEvent(ctx, event))
	second := seedEvent(t, store, "show-2")

	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, event, events[0])
	assert.Equal(t, second.Address, events[1].Address)
}

func TestTicketRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	event := seedEvent(t, store, "show-1")
	first := seedTicket(t, store, event, "seat-1", "bob")
	second := seedTicket(t, store, event, "seat-2", "carol")

	got, err := store.GetTicket(ctx, first.Address)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.ErrorIs(t, store.CreateTicket(ctx, first), domain.ErrDuplicateRecord)

	first.Owner = "dave"
	first.Seller = "bob"
	first.PurchaseDate = first.PurchaseDate.Add(90 * time.Minute)
	first.Price = math.MaxUint64
	first.AccumulatedRoyalty = math.MaxUint64
	first.ResaleCount = 255
	first.RoyaltyDistributed = true
	require.NoError(t, store.UpdateTicket(ctx, first))

	got, err = store.GetTicket(ctx, first.Address)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	byEvent, err := store.ListTicketsByEvent(ctx, event.Address)
	require.NoError(t, err)
	assert.Equal(t, []domain.Ticket{first, second}, byEvent)

	byOwner, err := store.ListTicketsByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []domain.Ticket{second}, byOwner)
}

func TestTicketRequiresEvent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.CreateTicket(context.Background(), domain.Ticket{
		Address:      "00000000-0000-0000-0000-000000000002",
		EventAddress: "00000000-0000-0000-0000-000000000001",
		Owner:        "bob",
		PurchaseDate: eventDate,
	})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestResaleHistory(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	event := seedEvent(t, store, "show-1")
	ticket := seedTicket(t, store, event, "seat-1", "bob")

	for _, index := range []uint8{2, 0, 1} {
		address, err := domain.HistoryAddress(ticket.Address, index)
		require.NoError(t, err)
		require.NoError(t, store.CreateResaleRecord(ctx, domain.ResaleRecord{
			Address:       address,
			TicketAddress: ticket.Address,
			Index:         index,
			Seller:        "alice",
			Buyer:         "bob",
			SaleDate:      eventDate,
			Price:         uint64(index) * 10,
		}))
	}

	records, err := store.ListResaleRecords(ctx, ticket.Address)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, uint8(i), rec.Index)
		assert.Equal(t, uint64(i)*10, rec.Price)
	}
	assert.ErrorIs(t, store.CreateResaleRecord(ctx, records[1]), domain.ErrDuplicateRecord)
}

func TestAccounts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	acc, err := store.GetAccount(ctx, "payer")
	require.NoError(t, err)
	assert.Equal(t, domain.Account{ID: "payer"}, acc)

	require.NoError(t, store.Credit(ctx, "payer", math.MaxUint64))
	assert.ErrorIs(t, store.Credit(ctx, "payer", 1), domain.ErrMathOverflow)

	require.NoError(t, store.Transfer(ctx, domain.Transfer{
		ID: "t-1", From: "payer", To: "organizer", Amount: 100, CreatedAt: eventDate,
	}))
	err = store.Transfer(ctx, domain.Transfer{
		ID: "t-2", From: "organizer", To: "payer", Amount: 101, CreatedAt: eventDate,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	organizer, err := store.GetAccount(ctx, "organizer")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), organizer.Balance)
	payer, err := store.GetAccount(ctx, "payer")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64-100), payer.Balance)

	journal, err := store.Transfers(ctx)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, "t-1", journal[0].ID)
	assert.Equal(t, eventDate, journal[0].CreatedAt)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	require.NoError(t, store.Credit(ctx, "payer", 100))

	err := store.WithTx(ctx, func(txCtx context.Context) error {
		if err := store.Transfer(txCtx, domain.Transfer{ID: "a", From: "payer", To: "x", Amount: 60}); err != nil {
			return err
		}
		return store.Transfer(txCtx, domain.Transfer{ID: "b", From: "payer", To: "y", Amount: 60})
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	payer, err := store.GetAccount(ctx, "payer")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), payer.Balance)
	journal, err := store.Transfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, journal)
}
