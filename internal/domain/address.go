package domain

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// Namespace tags keep event, ticket and history addresses in disjoint spaces.
const (
	EventTag   = "EVENT_STATE"
	TicketTag  = "TICKET_STATE"
	HistoryTag = "HISTORY"
)

var addressSpace = uuid.MustParse("0b5e5f7a-6c1d-4e0f-9a3b-7d2c8e4f1a90")

// EventAddress derives the record address for (creator, businessID).
func EventAddress(creator, businessID string) (string, error) {
	if creator == "" || businessID == "" {
		return "", ErrInvalidID
	}
	return deriveAddress(EventTag, []byte(creator), []byte(businessID)), nil
}

// TicketAddress derives the record address for (event, businessID).
func TicketAddress(eventAddress, businessID string) (string, error) {
	event, err := uuid.Parse(eventAddress)
	if err != nil || businessID == "" {
		return "", ErrInvalidID
	}
	return deriveAddress(TicketTag, event[:], []byte(businessID)), nil
}

// HistoryAddress derives the record address for the index-th resale of a ticket.
func HistoryAddress(ticketAddress string, index uint8) (string, error) {
	ticket, err := uuid.Parse(ticketAddress)
	if err != nil {
		return "", ErrInvalidID
	}
	return deriveAddress(HistoryTag, ticket[:], []byte{index}), nil
}

// ValidAddress reports whether s is a well-formed record address.
func ValidAddress(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// deriveAddress hashes the tag and length-prefixed seeds into a v5 UUID.
func deriveAddress(tag string, seeds ...[]byte) string {
	var buf bytes.Buffer
	buf.WriteString(tag)
	for _, seed := range seeds {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(seed)))
		buf.Write(n[:])
		buf.Write(seed)
	}
	return uuid.NewSHA1(addressSpace, buf.Bytes()).String()
}
