package domain

import "context"

// Each role of a source collaborator is a separate single-method interface.
// A collaborator implements whichever roles it can serve.

// IncomeSource returns money entering categories, summed per category and year
type IncomeSource interface {
	Incomes(ctx context.Context, owner OwnerScope) ([]RawEvent, error)
}

// ExpenseSource returns money leaving categories, summed per category and year
type ExpenseSource interface {
	Expenses(ctx context.Context, owner OwnerScope) ([]RawEvent, error)
}

// SnapshotSource returns observed worths
type SnapshotSource interface {
	Have(ctx context.Context, owner OwnerScope) ([]Snapshot, error)
}

// CategorySource returns the category registry
type CategorySource interface {
	Related(ctx context.Context, owner OwnerScope) ([]Category, error)
}
