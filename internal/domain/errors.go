package domain

import "errors"

var (
	ErrUnauthorized              = errors.New("unauthorized")
	ErrEventExpired              = errors.New("event expired")
	ErrEventNotActive            = errors.New("event not active")
	ErrTicketNotAvailable        = errors.New("ticket not available")
	ErrMathOverflow              = errors.New("math overflow")
	ErrDuplicateRecord           = errors.New("record already exists")
	ErrEventNotFound             = errors.New("event not found")
	ErrTicketNotFound            = errors.New("ticket not found")
	ErrInvalidID                 = errors.New("invalid id")
	ErrInvalidRoyaltySpec        = errors.New("invalid royalty spec")
	ErrInvalidRoyaltySplit       = errors.New("royalty split sums to zero")
	ErrRoyaltyAlreadyDistributed = errors.New("royalty already distributed")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrInvalidAmount             = errors.New("invalid amount")
)
