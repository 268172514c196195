package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// LedgerChangedData names the ledger source that changed and its journal
type LedgerChangedData struct {
	JournalID int64  `json:"journal_id"`
	Source    string `json:"source"` // table name, e.g. "incomes", "saving_worths"
}

// EventType returns the event type for LedgerChangedData
func (d *LedgerChangedData) EventType() EventType {
	return LedgerChanged
}

// BalancesSyncedData summarizes one reconciliation
type BalancesSyncedData struct {
	RunID     string `json:"run_id"`
	JournalID int64  `json:"journal_id"`
	Profile   string `json:"profile"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
}

// EventType returns the event type for BalancesSyncedData
func (d *BalancesSyncedData) EventType() EventType {
	return BalancesSynced
}

// ErrorEventData carries a failed operation
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
