package app

import (
	"context"

	"github.com/cimillas/ticket-ledger/internal/clock"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// RoyaltyRepository reads and updates tickets for royalty distribution.
type RoyaltyRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, address string) (domain.Event, error)
	GetTicketForUpdate(ctx context.Context, address string) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, ticket domain.Ticket) error
}

// Transferer moves native currency between accounts. It must join the
// transaction carried by ctx so a failed operation leaves no transfer behind.
type Transferer interface {
	Transfer(ctx context.Context, transfer domain.Transfer) error
}

// DistributionPolicy decides what happens when royalty is distributed twice.
type DistributionPolicy string

const (
	// DistributionPolicyRepeat pays the accumulated royalty on every call.
	DistributionPolicyRepeat DistributionPolicy = "repeat"
	// DistributionPolicyGuard rejects tickets already marked as distributed.
	DistributionPolicyGuard DistributionPolicy = "guard"
)

// RoyaltyDistributor pays accrued ticket royalties to beneficiaries.
type RoyaltyDistributor struct {
	repo      RoyaltyRepository
	transfers Transferer
	clock     clock.Clock
	logger    *logrus.Logger
	policy    DistributionPolicy
}

// NewRoyaltyDistributor builds a RoyaltyDistributor with the repeat policy unless an option overrides it.
func NewRoyaltyDistributor(repo RoyaltyRepository, transfers Transferer, clk clock.Clock, logger *logrus.Logger, opts ...RoyaltyDistributorOption) *RoyaltyDistributor {
	d := &RoyaltyDistributor{
		repo:      repo,
		transfers: transfers,
		clock:     clk,
		logger:    loggerOrDefault(logger),
		policy:    DistributionPolicyRepeat,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RoyaltyDistributorOption configures a RoyaltyDistributor.
type RoyaltyDistributorOption func(*RoyaltyDistributor)

// WithDistributionPolicy overrides the default repeat policy.
func WithDistributionPolicy(policy DistributionPolicy) RoyaltyDistributorOption {
	return func(d *RoyaltyDistributor) {
		if policy == DistributionPolicyRepeat || policy == DistributionPolicyGuard {
			d.policy = policy
		}
	}
}

// DistributeRoyaltyInput names the ticket, the payer and the three beneficiaries.
type DistributeRoyaltyInput struct {
	TicketAddress     string
	Payer             string
	PrimarySeller     string
	Platform          string
	SecondaryPlatform string
}

// Payout is one beneficiary share of a distribution.
type Payout struct {
	Beneficiary string
	Percent     uint64
	Amount      uint64
}

// DistributeRoyaltyResult holds the updated ticket and the payouts made.
type DistributeRoyaltyResult struct {
	Ticket  domain.Ticket
	Total   uint64
	Payouts []Payout
}

// DistributeRoyalty splits the ticket's accumulated royalty across the three
// beneficiaries and pays each non-zero share from the payer.
func (d *RoyaltyDistributor) DistributeRoyalty(ctx context.Context, in DistributeRoyaltyInput) (result DistributeRoyaltyResult, err error) {
	ctx, span := startSpan(ctx, "RoyaltyDistributor.DistributeRoyalty",
		attribute.String("ticket.address", in.TicketAddress),
		attribute.String("royalty.policy", string(d.policy)),
	)
	defer func() { endSpan(span, err) }()

	if !domain.ValidAddress(in.TicketAddress) {
		return DistributeRoyaltyResult{}, domain.ErrInvalidID
	}
	beneficiaries := [3]string{in.PrimarySeller, in.Platform, in.SecondaryPlatform}
	if in.Payer == "" || beneficiaries[0] == "" || beneficiaries[1] == "" || beneficiaries[2] == "" {
		return DistributeRoyaltyResult{}, domain.ErrInvalidID
	}

	now := d.clock.Now()

	err = d.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := d.repo.GetTicketForUpdate(txCtx, in.TicketAddress)
		if err != nil {
			return err
		}
		if d.policy == DistributionPolicyGuard && ticket.RoyaltyDistributed {
			return domain.ErrRoyaltyAlreadyDistributed
		}
		event, err := d.repo.GetEvent(txCtx, ticket.EventAddress)
		if err != nil {
			return err
		}

		split := event.RoyaltySplit()
		shares, err := split.Divide(ticket.AccumulatedRoyalty)
		if err != nil {
			return err
		}

		percents := split.Percents()
		payouts := make([]Payout, 0, len(shares))
		for i, amount := range shares {
			payouts = append(payouts, Payout{
				Beneficiary: beneficiaries[i],
				Percent:     percents[i],
				Amount:      amount,
			})
			if amount == 0 {
				continue
			}
			if err := d.transfers.Transfer(txCtx, domain.Transfer{
				ID:            newID(),
				From:          in.Payer,
				To:            beneficiaries[i],
				Amount:        amount,
				TicketAddress: ticket.Address,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
		}

		ticket.RoyaltyDistributed = true
		if err := d.repo.UpdateTicket(txCtx, ticket); err != nil {
			return err
		}

		result = DistributeRoyaltyResult{
			Ticket:  ticket,
			Total:   ticket.AccumulatedRoyalty,
			Payouts: payouts,
		}
		return nil
	})
	if err != nil {
		return DistributeRoyaltyResult{}, err
	}

	d.logger.WithContext(ctx).WithFields(logrus.Fields{
		"ticket": result.Ticket.Address,
		"amount": result.Total,
		"payer":  in.Payer,
	}).Info("royalty distributed")
	return result, nil
}
