// Package domain holds the types shared by ledger sources and the balance pipeline.
package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidOwner is returned for an owner scope that cannot identify a journal
var ErrInvalidOwner = errors.New("invalid owner scope")

// OwnerScope is the tenant boundary. Categories, events and persisted balance
// rows of one journal are never visible to another.
type OwnerScope struct {
	JournalID int64
}

// NewOwnerScope validates and builds an owner scope
func NewOwnerScope(journalID int64) (OwnerScope, error) {
	o := OwnerScope{JournalID: journalID}
	if err := o.Validate(); err != nil {
		return OwnerScope{}, err
	}
	return o, nil
}

// ParseOwnerScope reads a journal id from its decimal string form
func ParseOwnerScope(s string) (OwnerScope, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return OwnerScope{}, fmt.Errorf("%w: %q", ErrInvalidOwner, s)
	}
	return NewOwnerScope(id)
}

// Validate reports whether the scope names a journal
func (o OwnerScope) Validate() error {
	if o.JournalID <= 0 {
		return fmt.Errorf("%w: journal id %d", ErrInvalidOwner, o.JournalID)
	}
	return nil
}

func (o OwnerScope) String() string {
	return strconv.FormatInt(o.JournalID, 10)
}
