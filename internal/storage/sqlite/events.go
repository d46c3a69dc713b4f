package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-ledger/internal/domain"
)

const eventColumns = `address, creator, business_id, name, description, royalty_spec, venue,
    event_date, total_tickets, tickets_sold, base_price, is_active`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (domain.Event, error) {
	var e domain.Event
	var date int64
	var total, sold, price string
	var active int
	if err := row.Scan(&e.Address, &e.Creator, &e.BusinessID, &e.Name, &e.Description, &e.RoyaltySpec,
		&e.Venue, &date, &total, &sold, &price, &active); err != nil {
		return domain.Event{}, err
	}
	var err error
	if e.TotalTickets, err = parseAmount(total); err != nil {
		return domain.Event{}, fmt.Errorf("parse total_tickets: %w", err)
	}
	if e.TicketsSold, err = parseAmount(sold); err != nil {
		return domain.Event{}, fmt.Errorf("parse tickets_sold: %w", err)
	}
	if e.BasePrice, err = parseAmount(price); err != nil {
		return domain.Event{}, fmt.Errorf("parse base_price: %w", err)
	}
	e.Date = fromMillis(date)
	e.IsActive = active != 0
	return e, nil
}

func (s *Store) CreateEvent(ctx context.Context, event domain.Event) error {
	if !domain.ValidAddress(event.Address) {
		return domain.ErrInvalidID
	}
	_, err := s.exec(ctx, `
INSERT INTO events (address, creator, business_id, name, description, royalty_spec, venue,
    event_date, total_tickets, tickets_sold, base_price, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Address, event.Creator, event.BusinessID, event.Name, event.Description, event.RoyaltySpec,
		event.Venue, toMillis(event.Date), amount(event.TotalTickets), amount(event.TicketsSold),
		amount(event.BasePrice), boolInt(event.IsActive),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRecord
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, address string) (domain.Event, error) {
	if !domain.ValidAddress(address) {
		return domain.Event{}, domain.ErrInvalidID
	}
	event, err := scanEvent(s.queryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE address = ?`, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// GetEventForUpdate is GetEvent; immediate transactions already hold the
// database write lock.
func (s *Store) GetEventForUpdate(ctx context.Context, address string) (domain.Event, error) {
	return s.GetEvent(ctx, address)
}

func (s *Store) UpdateEvent(ctx context.Context, event domain.Event) error {
	res, err := s.exec(ctx, `
UPDATE events SET tickets_sold = ?, is_active = ?, royalty_spec = ?
WHERE address = ?`,
		amount(event.TicketsSold), boolInt(event.IsActive), event.RoyaltySpec, event.Address,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
