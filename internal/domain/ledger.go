package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is an account, saving type or pension type: the grouping key of
// balance rows. Closed is the last year rows are produced for, when set.
type Category struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Closed *int   `json:"closed,omitempty"`
}

// RawEvent is a per-(category, year) money total produced by one source.
// Several RawEvents for the same key are summed downstream.
type RawEvent struct {
	CategoryID int64
	Year       int
	Incomes    decimal.Decimal
	Expenses   decimal.Decimal
	Fee        decimal.Decimal
}

// Snapshot is a manually observed worth of a category
type Snapshot struct {
	CategoryID  int64
	Year        int
	Have        decimal.Decimal
	LatestCheck time.Time
}
