package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	db
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db{pool: pool}}
}

const eventColumns = `address, creator, business_id, name, description, royalty_spec, venue,
	event_date, total_tickets::text, tickets_sold::text, base_price::text, is_active`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (domain.Event, error) {
	var e domain.Event
	var total, sold, price string
	if err := row.Scan(&e.Address, &e.Creator, &e.BusinessID, &e.Name, &e.Description, &e.RoyaltySpec,
		&e.Venue, &e.Date, &total, &sold, &price, &e.IsActive); err != nil {
		return domain.Event{}, err
	}
	var err error
	if e.TotalTickets, err = parseNumeric(total); err != nil {
		return domain.Event{}, fmt.Errorf("parse total_tickets: %w", err)
	}
	if e.TicketsSold, err = parseNumeric(sold); err != nil {
		return domain.Event{}, fmt.Errorf("parse tickets_sold: %w", err)
	}
	if e.BasePrice, err = parseNumeric(price); err != nil {
		return domain.Event{}, fmt.Errorf("parse base_price: %w", err)
	}
	e.Date = e.Date.UTC()
	return e, nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (address, creator, business_id, name, description, royalty_spec, venue,
	event_date, total_tickets, tickets_sold, base_price, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::text::numeric, $10::text::numeric, $11::text::numeric, $12)`

	_, err := r.exec(ctx, stmt,
		event.Address, event.Creator, event.BusinessID, event.Name, event.Description, event.RoyaltySpec,
		event.Venue, event.Date, numeric(event.TotalTickets), numeric(event.TicketsSold),
		numeric(event.BasePrice), event.IsActive,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRecord
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, address string) (domain.Event, error) {
	return r.getEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE address = $1`, address)
}

func (r *EventRepository) GetEventForUpdate(ctx context.Context, address string) (domain.Event, error) {
	return r.getEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE address = $1 FOR UPDATE`, address)
}

func (r *EventRepository) getEvent(ctx context.Context, query, address string) (domain.Event, error) {
	event, err := scanEvent(r.queryRow(ctx, query, address))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent writes the mutable event fields: sold counter, activity flag and
// royalty spec.
func (r *EventRepository) UpdateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
UPDATE events
SET tickets_sold = $2::text::numeric, is_active = $3, royalty_spec = $4
WHERE address = $1`

	tag, err := r.exec(ctx, stmt, event.Address, numeric(event.TicketsSold), event.IsActive, event.RoyaltySpec)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.ErrTicketNotAvailable
		}
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY seq ASC`)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}
