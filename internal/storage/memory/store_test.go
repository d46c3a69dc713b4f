package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithTxRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	event := domain.Event{Address: "e1", Creator: "alice", TotalTickets: 2, IsActive: true}
	require.NoError(t, store.CreateEvent(ctx, event))
	require.NoError(t, store.Credit(ctx, "payer", 100))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(txCtx context.Context) error {
		event.TicketsSold = 1
		require.NoError(t, store.UpdateEvent(txCtx, event))
		require.NoError(t, store.Transfer(txCtx, domain.Transfer{ID: "t1", From: "payer", To: "bob", Amount: 40}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.TicketsSold)

	payer, err := store.GetAccount(ctx, "payer")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), payer.Balance)

	transfers, err := store.Transfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestStore_CreateIsInsertIfAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.CreateEvent(ctx, domain.Event{Address: "e1", Name: "first"}))
	assert.ErrorIs(t, store.CreateEvent(ctx, domain.Event{Address: "e1", Name: "second"}), domain.ErrDuplicateRecord)

	got, err := store.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	ticket := domain.Ticket{Address: "t1", EventAddress: "e1", Owner: "bob"}
	require.NoError(t, store.CreateTicket(ctx, ticket))
	assert.ErrorIs(t, store.CreateTicket(ctx, ticket), domain.ErrDuplicateRecord)
	assert.ErrorIs(t, store.CreateTicket(ctx, domain.Ticket{Address: "t2", EventAddress: "missing"}), domain.ErrEventNotFound)

	record := domain.ResaleRecord{Address: "h0", TicketAddress: "t1", SaleDate: time.Now()}
	require.NoError(t, store.CreateResaleRecord(ctx, record))
	assert.ErrorIs(t, store.CreateResaleRecord(ctx, record), domain.ErrDuplicateRecord)
}

func TestStore_UpdateTicketKeepsEventReference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.CreateEvent(ctx, domain.Event{Address: "e1"}))
	require.NoError(t, store.CreateTicket(ctx, domain.Ticket{Address: "t1", EventAddress: "e1", Owner: "bob"}))

	require.NoError(t, store.UpdateTicket(ctx, domain.Ticket{Address: "t1", EventAddress: "e2", Owner: "carol"}))
	got, err := store.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.EventAddress)
	assert.Equal(t, "carol", got.Owner)

	assert.ErrorIs(t, store.UpdateTicket(ctx, domain.Ticket{Address: "nope"}), domain.ErrTicketNotFound)
}

func TestStore_Transfer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Credit(ctx, "payer", 50))

	assert.ErrorIs(t, store.Transfer(ctx, domain.Transfer{From: "payer", To: "bob", Amount: 0}), domain.ErrInvalidAmount)
	assert.ErrorIs(t, store.Transfer(ctx, domain.Transfer{From: "payer", To: "bob", Amount: 51}), domain.ErrInsufficientFunds)
	require.NoError(t, store.Transfer(ctx, domain.Transfer{From: "payer", To: "bob", Amount: 20}))

	payer, _ := store.GetAccount(ctx, "payer")
	bob, _ := store.GetAccount(ctx, "bob")
	assert.Equal(t, uint64(30), payer.Balance)
	assert.Equal(t, uint64(20), bob.Balance)
}

func TestStore_ListResaleRecordsOrdered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.CreateEvent(ctx, domain.Event{Address: "e1"}))
	require.NoError(t, store.CreateTicket(ctx, domain.Ticket{Address: "t1", EventAddress: "e1"}))
	for _, idx := range []uint8{2, 0, 1} {
		require.NoError(t, store.CreateResaleRecord(ctx, domain.ResaleRecord{
			Address:       string(rune('a' + idx)),
			TicketAddress: "t1",
			Index:         idx,
		}))
	}

	records, err := store.ListResaleRecords(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, uint8(i), r.Index)
	}
}
