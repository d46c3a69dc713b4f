package domain

import "time"

// Ticket is a single issued ticket. EventAddress never changes after issuance.
type Ticket struct {
	Address            string
	EventAddress       string
	Owner              string
	Seller             string
	BusinessID         string
	PurchaseDate       time.Time
	Price              uint64
	ResaleCount        uint8
	AccumulatedRoyalty uint64
	RoyaltyDistributed bool
}
