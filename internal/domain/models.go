package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session holds the per-user dialogue state between turns.
type Session struct {
	UserID       string            `json:"user_id"`
	State        State             `json:"state"`
	Fields       map[string]string `json:"fields"`
	Version      int64             `json:"version"`
	LastActivity time.Time         `json:"last_activity"`
}

// NewSession creates an idle session for a user.
func NewSession(userID string) Session {
	return Session{
		UserID: userID,
		State:  StateIdle,
		Fields: map[string]string{},
	}
}

// Reset clears accumulated fields and settles the session at IDLE.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Fields = map[string]string{}
}

// CurrencyRecord represents a currency and its rate against the base unit.
type CurrencyRecord struct {
	Code string          `json:"currency_name"`
	Rate decimal.Decimal `json:"rate"`
}

// LedgerEntry represents a single committed income or expense operation.
// Entries are immutable once stored.
type LedgerEntry struct {
	ID      string          `json:"id"`
	Date    time.Time       `json:"date"`
	Amount  decimal.Decimal `json:"sum"`
	OwnerID string          `json:"chat_id"`
	Kind    EntryKind       `json:"type_operation"`
}

// UserRegistration represents a registered bot user.
type UserRegistration struct {
	OwnerID     string `json:"chat_id"`
	DisplayName string `json:"name"`
}

// Conversion is the result of converting an amount into the base unit.
type Conversion struct {
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	Rate            decimal.Decimal `json:"rate"`
}

// Event is an inbound message from the transport: free text or a button token.
type Event struct {
	UserID string `json:"user_id"`
	Text   string `json:"text,omitempty"`
	Token  Token  `json:"token,omitempty"`
}

// Reply is the outbound answer for a user.
type Reply struct {
	UserID string `json:"user_id"`
	Text   string `json:"reply"`
}
