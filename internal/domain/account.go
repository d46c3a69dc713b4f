package domain

import "time"

// Account holds a native-currency balance in minor units.
type Account struct {
	ID      string
	Balance uint64
}

// Transfer is a journaled movement of funds between two accounts.
type Transfer struct {
	ID            string
	From          string
	To            string
	Amount        uint64
	TicketAddress string
	CreatedAt     time.Time
}
