package domain

import "time"

// AccountEventType names a lifecycle transition recorded in the audit trail.
type AccountEventType string

const (
	EventRegistered AccountEventType = "registered"
	EventLoggedIn   AccountEventType = "logged_in"
	EventUpdated    AccountEventType = "updated"
	EventDeleted    AccountEventType = "deleted"
)

// AccountEvent is one entry of the account audit trail.
type AccountEvent struct {
	ID         string
	AccountID  string
	Kind       Kind
	Type       AccountEventType
	RequestID  string
	OccurredAt time.Time
}
