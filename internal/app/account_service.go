package app

import (
	"context"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/sirupsen/logrus"
)

// AccountRepository stores balances keyed by account id.
type AccountRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Credit(ctx context.Context, accountID string, amount uint64) error
	GetAccount(ctx context.Context, accountID string) (domain.Account, error)
}

// AccountService exposes the balance table behind the transfer primitive.
type AccountService struct {
	repo   AccountRepository
	logger *logrus.Logger
}

// NewAccountService builds an AccountService over repo.
func NewAccountService(repo AccountRepository, logger *logrus.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		logger: loggerOrDefault(logger),
	}
}

// Fund credits amount to an account, creating it when missing.
func (s *AccountService) Fund(ctx context.Context, accountID string, amount uint64) (domain.Account, error) {
	if accountID == "" {
		return domain.Account{}, domain.ErrInvalidID
	}
	if amount == 0 {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	var account domain.Account
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Credit(txCtx, accountID, amount); err != nil {
			return err
		}
		var err error
		account, err = s.repo.GetAccount(txCtx, accountID)
		return err
	})
	if err != nil {
		return domain.Account{}, err
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"account": accountID,
		"amount":  amount,
		"balance": account.Balance,
	}).Info("account funded")
	return account, nil
}

// Balance returns the account; unknown accounts read as a zero balance.
func (s *AccountService) Balance(ctx context.Context, accountID string) (domain.Account, error) {
	if accountID == "" {
		return domain.Account{}, domain.ErrInvalidID
	}
	return s.repo.GetAccount(ctx, accountID)
}
