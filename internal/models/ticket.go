package models

import "time"

// Ticket statuses.
const (
	TicketOpen     = "open"
	TicketAnswered = "answered"
	TicketClosed   = "closed"
)

// validTicketStatuses lists accepted ticket statuses.
var validTicketStatuses = map[string]bool{
	TicketOpen:     true,
	TicketAnswered: true,
	TicketClosed:   true,
}

// ValidTicketStatus returns true if s is a recognized ticket status.
func ValidTicketStatus(s string) bool {
	return validTicketStatuses[s]
}

// TicketMessage is one entry in a support ticket conversation.
type TicketMessage struct {
	Author    string    `json:"author"` // "user" or "support"
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Ticket is a support request raised by a user.
type Ticket struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Status    string          `json:"status"`
	Messages  []TicketMessage `json:"messages"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
