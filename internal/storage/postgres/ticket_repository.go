package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketRepository also exposes the event queries a purchase needs.
type TicketRepository struct {
	*EventRepository
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{EventRepository: NewEventRepository(pool)}
}

const ticketColumns = `address, event_address, owner, seller, business_id, purchase_date,
	price::text, resale_count, accumulated_royalty::text, royalty_distributed`

func scanTicket(row scanner) (domain.Ticket, error) {
	var t domain.Ticket
	var price, royalty string
	var resales int16
	if err := row.Scan(&t.Address, &t.EventAddress, &t.Owner, &t.Seller, &t.BusinessID, &t.PurchaseDate,
		&price, &resales, &royalty, &t.RoyaltyDistributed); err != nil {
		return domain.Ticket{}, err
	}
	var err error
	if t.Price, err = parseNumeric(price); err != nil {
		return domain.Ticket{}, fmt.Errorf("parse price: %w", err)
	}
	if t.AccumulatedRoyalty, err = parseNumeric(royalty); err != nil {
		return domain.Ticket{}, fmt.Errorf("parse accumulated_royalty: %w", err)
	}
	t.ResaleCount = uint8(resales)
	t.PurchaseDate = t.PurchaseDate.UTC()
	return t, nil
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (address, event_address, owner, seller, business_id, purchase_date, price,
	resale_count, accumulated_royalty, royalty_distributed)
VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8, $9::text::numeric, $10)`

	_, err := r.exec(ctx, stmt,
		ticket.Address, ticket.EventAddress, ticket.Owner, ticket.Seller, ticket.BusinessID,
		ticket.PurchaseDate, numeric(ticket.Price), int16(ticket.ResaleCount),
		numeric(ticket.AccumulatedRoyalty), ticket.RoyaltyDistributed,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRecord
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, address string) (domain.Ticket, error) {
	return r.getTicket(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE address = $1`, address)
}

func (r *TicketRepository) GetTicketForUpdate(ctx context.Context, address string) (domain.Ticket, error) {
	return r.getTicket(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE address = $1 FOR UPDATE`, address)
}

func (r *TicketRepository) getTicket(ctx context.Context, query, address string) (domain.Ticket, error) {
	ticket, err := scanTicket(r.queryRow(ctx, query, address))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// UpdateTicket rewrites ownership, purchase date, price, resale count and
// royalty state. The event reference and business id are never rewritten.
func (r *TicketRepository) UpdateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
UPDATE tickets
SET owner = $2, seller = $3, purchase_date = $4, price = $5::text::numeric, resale_count = $6,
	accumulated_royalty = $7::text::numeric, royalty_distributed = $8
WHERE address = $1`

	tag, err := r.exec(ctx, stmt,
		ticket.Address, ticket.Owner, ticket.Seller, ticket.PurchaseDate, numeric(ticket.Price), int16(ticket.ResaleCount),
		numeric(ticket.AccumulatedRoyalty), ticket.RoyaltyDistributed,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.ErrMathOverflow
		}
		return fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) ListTicketsByOwner(ctx context.Context, owner string) ([]domain.Ticket, error) {
	return r.listTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE owner = $1 ORDER BY seq ASC`, owner)
}

func (r *TicketRepository) ListTicketsByEvent(ctx context.Context, eventAddress string) ([]domain.Ticket, error) {
	return r.listTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE event_address = $1 ORDER BY seq ASC`, eventAddress)
}

func (r *TicketRepository) listTickets(ctx context.Context, query string, arg string) ([]domain.Ticket, error) {
	rows, err := r.query(ctx, query, arg)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return tickets, nil
}
