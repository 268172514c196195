// Package events provides the in-process event bus used to trigger balance recomputes.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// LedgerChanged is emitted after a raw ledger record is saved or deleted
	LedgerChanged EventType = "LEDGER_CHANGED"
	// BalancesSynced is emitted after a balance table was reconciled
	BalancesSynced EventType = "BALANCES_SYNCED"
	// ErrorOccurred is emitted when a recompute fails
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data,omitempty"`
}
