// Package memory provides an in-process record store. Each WithTx call holds
// the store lock and restores a snapshot when the callback fails, so every
// operation commits or rolls back as one unit.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/cimillas/ticket-ledger/internal/domain"
)

type txKey struct{}

type state struct {
	events      map[string]domain.Event
	eventOrder  []string
	tickets     map[string]domain.Ticket
	ticketOrder []string
	history     map[string]domain.ResaleRecord
	balances    map[string]uint64
	transfers   []domain.Transfer
}

func (s state) clone() state {
	return state{
		events:      maps.Clone(s.events),
		eventOrder:  slices.Clone(s.eventOrder),
		tickets:     maps.Clone(s.tickets),
		ticketOrder: slices.Clone(s.ticketOrder),
		history:     maps.Clone(s.history),
		balances:    maps.Clone(s.balances),
		transfers:   slices.Clone(s.transfers),
	}
}

// Store keeps every record in maps guarded by a single mutex.
type Store struct {
	mu sync.Mutex
	st state
}

func NewStore() *Store {
	return &Store{st: state{
		events:   make(map[string]domain.Event),
		tickets:  make(map[string]domain.Ticket),
		history:  make(map[string]domain.ResaleRecord),
		balances: make(map[string]uint64),
	}}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// locked runs fn under the store lock unless ctx already belongs to a transaction.
func (s *Store) locked(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) CreateEvent(ctx context.Context, event domain.Event) error {
	return s.locked(ctx, func() error {
		if _, exists := s.st.events[event.Address]; exists {
			return domain.ErrDuplicateRecord
		}
		s.st.events[event.Address] = event
		s.st.eventOrder = append(s.st.eventOrder, event.Address)
		return nil
	})
}

func (s *Store) GetEvent(ctx context.Context, address string) (domain.Event, error) {
	var event domain.Event
	err := s.locked(ctx, func() error {
		found, ok := s.st.events[address]
		if !ok {
			return domain.ErrEventNotFound
		}
		event = found
		return nil
	})
	return event, err
}

// GetEventForUpdate is GetEvent; the store lock already serialises writers.
func (s *Store) GetEventForUpdate(ctx context.Context, address string) (domain.Event, error) {
	return s.GetEvent(ctx, address)
}

func (s *Store) UpdateEvent(ctx context.Context, event domain.Event) error {
	return s.locked(ctx, func() error {
		if _, ok := s.st.events[event.Address]; !ok {
			return domain.ErrEventNotFound
		}
		s.st.events[event.Address] = event
		return nil
	})
}

func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	err := s.locked(ctx, func() error {
		for _, address := range s.st.eventOrder {
			events = append(events, s.st.events[address])
		}
		return nil
	})
	return events, err
}

func (s *Store) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	return s.locked(ctx, func() error {
		if _, exists := s.st.tickets[ticket.Address]; exists {
			return domain.ErrDuplicateRecord
		}
		if _, ok := s.st.events[ticket.EventAddress]; !ok {
			return domain.ErrEventNotFound
		}
		s.st.tickets[ticket.Address] = ticket
		s.st.ticketOrder = append(s.st.ticketOrder, ticket.Address)
		return nil
	})
}

func (s *Store) GetTicket(ctx context.Context, address string) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := s.locked(ctx, func() error {
		found, ok := s.st.tickets[address]
		if !ok {
			return domain.ErrTicketNotFound
		}
		ticket = found
		return nil
	})
	return ticket, err
}

func (s *Store) GetTicketForUpdate(ctx context.Context, address string) (domain.Ticket, error) {
	return s.GetTicket(ctx, address)
}

// UpdateTicket replaces the mutable ticket fields. The event reference is kept.
func (s *Store) UpdateTicket(ctx context.Context, ticket domain.Ticket) error {
	return s.locked(ctx, func() error {
		current, ok := s.st.tickets[ticket.Address]
		if !ok {
			return domain.ErrTicketNotFound
		}
		ticket.EventAddress = current.EventAddress
		ticket.BusinessID = current.BusinessID
		s.st.tickets[ticket.Address] = ticket
		return nil
	})
}

func (s *Store) ListTicketsByOwner(ctx context.Context, owner string) ([]domain.Ticket, error) {
	return s.filterTickets(ctx, func(t domain.Ticket) bool { return t.Owner == owner })
}

func (s *Store) ListTicketsByEvent(ctx context.Context, eventAddress string) ([]domain.Ticket, error) {
	return s.filterTickets(ctx, func(t domain.Ticket) bool { return t.EventAddress == eventAddress })
}

func (s *Store) filterTickets(ctx context.Context, keep func(domain.Ticket) bool) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := s.locked(ctx, func() error {
		for _, address := range s.st.ticketOrder {
			if t := s.st.tickets[address]; keep(t) {
				tickets = append(tickets, t)
			}
		}
		return nil
	})
	return tickets, err
}

func (s *Store) CreateResaleRecord(ctx context.Context, record domain.ResaleRecord) error {
	return s.locked(ctx, func() error {
		if _, exists := s.st.history[record.Address]; exists {
			return domain.ErrDuplicateRecord
		}
		if _, ok := s.st.tickets[record.TicketAddress]; !ok {
			return domain.ErrTicketNotFound
		}
		s.st.history[record.Address] = record
		return nil
	})
}

func (s *Store) ListResaleRecords(ctx context.Context, ticketAddress string) ([]domain.ResaleRecord, error) {
	var records []domain.ResaleRecord
	err := s.locked(ctx, func() error {
		for _, r := range s.st.history {
			if r.TicketAddress == ticketAddress {
				records = append(records, r)
			}
		}
		slices.SortFunc(records, func(a, b domain.ResaleRecord) int { return cmp.Compare(a.Index, b.Index) })
		return nil
	})
	return records, err
}

func (s *Store) Credit(ctx context.Context, accountID string, amount uint64) error {
	return s.locked(ctx, func() error {
		balance, err := domain.CheckedAdd(s.st.balances[accountID], amount)
		if err != nil {
			return err
		}
		s.st.balances[accountID] = balance
		return nil
	})
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	var account domain.Account
	err := s.locked(ctx, func() error {
		account = domain.Account{ID: accountID, Balance: s.st.balances[accountID]}
		return nil
	})
	return account, err
}

// Transfer debits the payer and credits the beneficiary, journaling the move.
func (s *Store) Transfer(ctx context.Context, transfer domain.Transfer) error {
	if transfer.Amount == 0 {
		return domain.ErrInvalidAmount
	}
	if transfer.From == "" || transfer.To == "" {
		return domain.ErrInvalidID
	}
	return s.locked(ctx, func() error {
		from := s.st.balances[transfer.From]
		if from < transfer.Amount {
			return domain.ErrInsufficientFunds
		}
		if transfer.From == transfer.To {
			s.st.transfers = append(s.st.transfers, transfer)
			return nil
		}
		to, err := domain.CheckedAdd(s.st.balances[transfer.To], transfer.Amount)
		if err != nil {
			return err
		}
		s.st.balances[transfer.From] = from - transfer.Amount
		s.st.balances[transfer.To] = to
		s.st.transfers = append(s.st.transfers, transfer)
		return nil
	})
}

// Transfers returns the journal in insertion order.
func (s *Store) Transfers(ctx context.Context) ([]domain.Transfer, error) {
	var transfers []domain.Transfer
	err := s.locked(ctx, func() error {
		transfers = slices.Clone(s.st.transfers)
		return nil
	})
	return transfers, err
}
