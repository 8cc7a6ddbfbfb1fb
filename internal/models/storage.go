package models

import "time"

// UserRecord is the generic storage envelope for all user domain data.
// Subject groups records by kind ("transactions", "backtest", "ticket");
// Key identifies the record within the subject (usually a portfolio name or ID).
// Value holds the JSON-encoded payload.
type UserRecord struct {
	UserID   string    `json:"user_id"`
	Subject  string    `json:"subject"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}
