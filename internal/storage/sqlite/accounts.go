package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-ledger/internal/domain"
)

func (s *Store) balance(ctx context.Context, accountID string) (uint64, error) {
	var raw string
	err := s.queryRow(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get account: %w", err)
	}
	v, err := parseAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("parse balance: %w", err)
	}
	return v, nil
}

func (s *Store) setBalance(ctx context.Context, accountID string, v uint64) error {
	_, err := s.exec(ctx, `
INSERT INTO accounts (id, balance) VALUES (?, ?)
ON CONFLICT (id) DO UPDATE SET balance = excluded.balance`, accountID, amount(v))
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (s *Store) Credit(ctx context.Context, accountID string, value uint64) error {
	return s.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.balance(txCtx, accountID)
		if err != nil {
			return err
		}
		next, err := domain.CheckedAdd(current, value)
		if err != nil {
			return err
		}
		return s.setBalance(txCtx, accountID, next)
	})
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	balance, err := s.balance(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{ID: accountID, Balance: balance}, nil
}

// Transfer debits the payer and credits the beneficiary, journaling the move.
func (s *Store) Transfer(ctx context.Context, transfer domain.Transfer) error {
	if transfer.Amount == 0 {
		return domain.ErrInvalidAmount
	}
	if transfer.From == "" || transfer.To == "" {
		return domain.ErrInvalidID
	}
	return s.WithTx(ctx, func(txCtx context.Context) error {
		from, err := s.balance(txCtx, transfer.From)
		if err != nil {
			return err
		}
		if from < transfer.Amount {
			return domain.ErrInsufficientFunds
		}
		if transfer.From != transfer.To {
			to, err := s.balance(txCtx, transfer.To)
			if err != nil {
				return err
			}
			credited, err := domain.CheckedAdd(to, transfer.Amount)
			if err != nil {
				return err
			}
			if err := s.setBalance(txCtx, transfer.From, from-transfer.Amount); err != nil {
				return err
			}
			if err := s.setBalance(txCtx, transfer.To, credited); err != nil {
				return err
			}
		}
		_, err = s.exec(txCtx, `
INSERT INTO transfers (id, from_account, to_account, amount, ticket_address, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
			transfer.ID, transfer.From, transfer.To, amount(transfer.Amount), transfer.TicketAddress,
			toMillis(transfer.CreatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateRecord
			}
			return fmt.Errorf("journal transfer: %w", err)
		}
		return nil
	})
}

// Transfers returns the journal in insertion order.
func (s *Store) Transfers(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := s.query(ctx, `
SELECT id, from_account, to_account, amount, ticket_address, created_at
FROM transfers ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var tr domain.Transfer
		var raw string
		var created int64
		if err := rows.Scan(&tr.ID, &tr.From, &tr.To, &raw, &tr.TicketAddress, &created); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		if tr.Amount, err = parseAmount(raw); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		tr.CreatedAt = fromMillis(created)
		transfers = append(transfers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}
