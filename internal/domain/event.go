package domain

import "time"

// Event is a ticketed event created by a single authority.
type Event struct {
	Address      string
	Creator      string
	BusinessID   string
	Name         string
	Description  string
	Venue        string
	RoyaltySpec  string
	Date         time.Time
	TotalTickets uint64
	TicketsSold  uint64
	BasePrice    uint64
	IsActive     bool
}

// Remaining reports how many primary-sale tickets are left.
func (e Event) Remaining() uint64 {
	if e.TicketsSold >= e.TotalTickets {
		return 0
	}
	return e.TotalTickets - e.TicketsSold
}

// RoyaltySplit parses the stored royalty spec with the lenient fallback rules.
func (e Event) RoyaltySplit() RoyaltySplit {
	return ParseRoyaltySpec(e.RoyaltySpec)
}
