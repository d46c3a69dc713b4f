package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResaleRepository adds the append-only resale history to ticket access.
type ResaleRepository struct {
	*TicketRepository
}

func NewResaleRepository(pool *pgxpool.Pool) *ResaleRepository {
	return &ResaleRepository{TicketRepository: NewTicketRepository(pool)}
}

func (r *ResaleRepository) CreateResaleRecord(ctx context.Context, record domain.ResaleRecord) error {
	const stmt = `
INSERT INTO resale_history (address, ticket_address, resale_index, seller, buyer, sale_date, price)
VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric)`

	_, err := r.exec(ctx, stmt,
		record.Address, record.TicketAddress, int16(record.Index), record.Seller, record.Buyer,
		record.SaleDate, numeric(record.Price),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
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

func (r *ResaleRepository) ListResaleRecords(ctx context.Context, ticketAddress string) ([]domain.ResaleRecord, error) {
	const query = `
SELECT address, ticket_address, resale_index, seller, buyer, sale_date, price::text
FROM resale_history
WHERE ticket_address = $1
ORDER BY resale_index ASC`

	rows, err := r.query(ctx, query, ticketAddress)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list resale records: %w", err)
	}
	defer rows.Close()

	var records []domain.ResaleRecord
	for rows.Next() {
		var rec domain.ResaleRecord
		var index int16
		var price string
		if err := rows.Scan(&rec.Address, &rec.TicketAddress, &index, &rec.Seller, &rec.Buyer, &rec.SaleDate, &price); err != nil {
			return nil, fmt.Errorf("scan resale record: %w", err)
		}
		if rec.Price, err = parseNumeric(price); err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		rec.Index = uint8(index)
		rec.SaleDate = rec.SaleDate.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate resale records: %w", err)
	}
	return records, nil
}
