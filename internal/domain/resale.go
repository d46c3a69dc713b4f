package domain

import "time"

// ResaleRecord snapshots a ticket's state right before a resale. Records are
// append-only and addressed by (ticket, index).
type ResaleRecord struct {
	Address       string
	TicketAddress string
	Index         uint8
	Seller        string
	Buyer         string
	SaleDate      time.Time
	Price         uint64
}
