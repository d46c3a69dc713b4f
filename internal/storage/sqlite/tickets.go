package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-ledger/internal/domain"
)

const ticketColumns = `address, event_address, owner, seller, business_id, purchase_date,
    price, resale_count, accumulated_royalty, royalty_distributed`

func scanTicket(row scanner) (domain.Ticket, error) {
	var t domain.Ticket
	var purchased int64
	var price, royalty string
	var resales, distributed int
	if err := row.Scan(&t.Address, &t.EventAddress, &t.Owner, &t.Seller, &t.BusinessID, &purchased,
		&price, &resales, &royalty, &distributed); err != nil {
		return domain.Ticket{}, err
	}
	var err error
	if t.Price, err = parseAmount(price); err != nil {
		return domain.Ticket{}, fmt.Errorf("parse price: %w", err)
	}
	if t.AccumulatedRoyalty, err = parseAmount(royalty); err != nil {
		return domain.Ticket{}, fmt.Errorf("parse accumulated_royalty: %w", err)
	}
	t.PurchaseDate = fromMillis(purchased)
	t.ResaleCount = uint8(resales)
	t.RoyaltyDistributed = distributed != 0
	return t, nil
}

func (s *Store) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	if !domain.ValidAddress(ticket.Address) || !domain.ValidAddress(ticket.EventAddress) {
		return domain.ErrInvalidID
	}
	_, err := s.exec(ctx, `
INSERT INTO tickets (address, event_address, owner, seller, business_id, purchase_date, price,
    resale_count, accumulated_royalty, royalty_distributed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.Address, ticket.EventAddress, ticket.Owner, ticket.Seller, ticket.BusinessID,
		toMillis(ticket.PurchaseDate), amount(ticket.Price), int(ticket.ResaleCount),
		amount(ticket.AccumulatedRoyalty), boolInt(ticket.RoyaltyDistributed),
	)
	if err != nil {
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

func (s *Store) GetTicket(ctx context.Context, address string) (domain.Ticket, error) {
	if !domain.ValidAddress(address) {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	ticket, err := scanTicket(s.queryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE address = ?`, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (s *Store) GetTicketForUpdate(ctx context.Context, address string) (domain.Ticket, error) {
	return s.GetTicket(ctx, address)
}

// UpdateTicket rewrites ownership, purchase date, price, resale count and
// royalty state. The event reference and business id are never rewritten.
func (s *Store) UpdateTicket(ctx context.Context, ticket domain.Ticket) error {
	res, err := s.exec(ctx, `
UPDATE tickets
SET owner = ?, seller = ?, purchase_date = ?, price = ?, resale_count = ?,
	accumulated_royalty = ?, royalty_distributed = ?
WHERE address = ?`,
		ticket.Owner, ticket.Seller, toMillis(ticket.PurchaseDate), amount(ticket.Price), int(ticket.ResaleCount),
		amount(ticket.AccumulatedRoyalty), boolInt(ticket.RoyaltyDistributed), ticket.Address,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrMathOverflow
		}
		return fmt.Errorf("update ticket: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (s *Store) ListTicketsByOwner(ctx context.Context, owner string) ([]domain.Ticket, error) {
	return s.listTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE owner = ? ORDER BY rowid ASC`, owner)
}

func (s *Store) ListTicketsByEvent(ctx context.Context, eventAddress string) ([]domain.Ticket, error) {
	if !domain.ValidAddress(eventAddress) {
		return nil, domain.ErrInvalidID
	}
	return s.listTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE event_address = ? ORDER BY rowid ASC`, eventAddress)
}

func (s *Store) listTickets(ctx context.Context, query, arg string) ([]domain.Ticket, error) {
	rows, err := s.query(ctx, query, arg)
	if err != nil {
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
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return tickets, nil
}

func (s *Store) CreateResaleRecord(ctx context.Context, record domain.ResaleRecord) error {
	if !domain.ValidAddress(record.Address) || !domain.ValidAddress(record.TicketAddress) {
		return domain.ErrInvalidID
	}
	_, err := s.exec(ctx, `
INSERT INTO resale_history (address, ticket_address, resale_index, seller, buyer, sale_date, price)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.Address, record.TicketAddress, int(record.Index), record.Seller, record.Buyer,
		toMillis(record.SaleDate), amount(record.Price),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRecord
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTicketNotFound
		}
		return fmt.Errorf("create resale record: %w", err)
	}
	return nil
}

func (s *Store) ListResaleRecords(ctx context.Context, ticketAddress string) ([]domain.ResaleRecord, error) {
	if !domain.ValidAddress(ticketAddress) {
		return nil, domain.ErrInvalidID
	}
	rows, err := s.query(ctx, `
SELECT address, ticket_address, resale_index, seller, buyer, sale_date, price
FROM resale_history
WHERE ticket_address = ?
ORDER BY resale_index ASC`, ticketAddress)
	if err != nil {
		return nil, fmt.Errorf("list resale records: %w", err)
	}
	defer rows.Close()

	var records []domain.ResaleRecord
	for rows.Next() {
		var rec domain.ResaleRecord
		var index int
		var sold int64
		var price string
		if err := rows.Scan(&rec.Address, &rec.TicketAddress, &index, &rec.Seller, &rec.Buyer, &sold, &price); err != nil {
			return nil, fmt.Errorf("scan resale record: %w", err)
		}
		if rec.Price, err = parseAmount(price); err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		rec.Index = uint8(index)
		rec.SaleDate = fromMillis(sold)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resale records: %w", err)
	}
	return records, nil
}
