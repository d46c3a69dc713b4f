package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository keeps native balances and the transfer journal.
type AccountRepository struct {
	db
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db{pool: pool}}
}

func (r *AccountRepository) Credit(ctx context.Context, accountID string, amount uint64) error {
	const stmt = `
INSERT INTO accounts (id, balance) VALUES ($1, $2::text::numeric)
ON CONFLICT (id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`

	if _, err := r.exec(ctx, stmt, accountID, numeric(amount)); err != nil {
		if isCheckViolation(err) {
			return domain.ErrMathOverflow
		}
		return fmt.Errorf("credit account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	var balance string
	err := r.queryRow(ctx, `SELECT balance::text FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{ID: accountID}, nil
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	amount, err := parseNumeric(balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse balance: %w", err)
	}
	return domain.Account{ID: accountID, Balance: amount}, nil
}

// Transfer debits the payer and credits the beneficiary in one transaction,
// joining the caller's transaction when ctx carries one.
func (r *AccountRepository) Transfer(ctx context.Context, transfer domain.Transfer) error {
	if transfer.Amount == 0 {
		return domain.ErrInvalidAmount
	}
	if transfer.From == "" || transfer.To == "" {
		return domain.ErrInvalidID
	}

	return r.WithTx(ctx, func(txCtx context.Context) error {
		const debit = `
UPDATE accounts SET balance = balance - $2::text::numeric
WHERE id = $1 AND balance >= $2::text::numeric`
		tag, err := r.exec(txCtx, debit, transfer.From, numeric(transfer.Amount))
		if err != nil {
			return fmt.Errorf("debit account: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrInsufficientFunds
		}
		if err := r.Credit(txCtx, transfer.To, transfer.Amount); err != nil {
			return err
		}

		var ticket any
		if transfer.TicketAddress != "" {
			ticket = transfer.TicketAddress
		}
		const journal = `
INSERT INTO transfers (id, from_account, to_account, amount, ticket_address, created_at)
VALUES ($1, $2, $3, $4::text::numeric, $5, $6)`
		if _, err := r.exec(txCtx, journal, transfer.ID, transfer.From, transfer.To,
			numeric(transfer.Amount), ticket, transfer.CreatedAt); err != nil {
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("journal transfer: %w", err)
		}
		return nil
	})
}

// Transfers returns the journal in insertion order.
func (r *AccountRepository) Transfers(ctx context.Context) ([]domain.Transfer, error) {
	const query = `
SELECT id, from_account, to_account, amount::text, COALESCE(ticket_address::text, ''), created_at
FROM transfers
ORDER BY seq ASC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var tr domain.Transfer
		var amount string
		if err := rows.Scan(&tr.ID, &tr.From, &tr.To, &amount, &tr.TicketAddress, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		if tr.Amount, err = parseNumeric(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		tr.CreatedAt = tr.CreatedAt.UTC()
		transfers = append(transfers, tr)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate transfers: %w", rows.Err())
	}
	return transfers, nil
}
