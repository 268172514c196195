package balances

import (
	"fmt"

	"github.com/homebooks/balances/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Role is a slot in the source configuration
type Role string

const (
	RoleIncomes  Role = "incomes"
	RoleExpenses Role = "expenses"
	RoleHave     Role = "have"
	RoleTypes    Role = "types"
)

// RawField names a money amount on domain.RawEvent
type RawField string

const (
	RawIncomes  RawField = "incomes"
	RawExpenses RawField = "expenses"
	RawFee      RawField = "fee"
)

// Storage locates a profile's persisted table
type Storage struct {
	Table          string
	CategoryColumn string
}

// Profile is the per-kind balance arithmetic. The grid expansion, the differ
// and the synchronizer only talk to this interface.
type Profile interface {
	Kind() domain.ProfileKind
	// FieldMap says which raw amount of which role feeds which table field
	FieldMap() map[Role]map[RawField]Field
	// SnapshotField receives observed worth values
	SnapshotField() Field
	// Accumulate applies the cumulative formulas to a dense, sorted grid in place
	Accumulate(t Table)
	// Fields lists the persisted numeric fields in column order
	Fields() []Field
	Storage() Storage
}

// ProfileFor returns the profile implementing kind
func ProfileFor(kind domain.ProfileKind) (Profile, error) {
	switch kind {
	case domain.ProfileAccount:
		return AccountProfile{}, nil
	case domain.ProfileSaving:
		return SavingProfile{kind: domain.ProfileSaving, storage: Storage{Table: "saving_balances", CategoryColumn: "saving_type_id"}}, nil
	case domain.ProfilePension:
		return SavingProfile{kind: domain.ProfilePension, storage: Storage{Table: "pension_balances", CategoryColumn: "pension_type_id"}}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, string(kind))
}

// AccountProfile tracks cash accounts: a running balance against the observed worth
type AccountProfile struct{}

func (AccountProfile) Kind() domain.ProfileKind { return domain.ProfileAccount }

func (AccountProfile) FieldMap() map[Role]map[RawField]Field {
	return map[Role]map[RawField]Field{
		RoleIncomes:  {RawIncomes: FieldIncomes},
		RoleExpenses: {RawExpenses: FieldExpenses},
	}
}

func (AccountProfile) SnapshotField() Field { return FieldHave }

func (AccountProfile) Fields() []Field {
	return []Field{FieldPast, FieldIncomes, FieldExpenses, FieldBalance, FieldHave, FieldDelta}
}

func (AccountProfile) Storage() Storage {
	return Storage{Table: "account_balances", CategoryColumn: "account_id"}
}

// Accumulate computes past, balance and delta:
//
//	past[y]    = sum(incomes - expenses) over years < y
//	balance[y] = past[y] + incomes[y] - expenses[y]
//	delta[y]   = have[y] - balance[y]
func (AccountProfile) Accumulate(t Table) {
	yearly := make([]float64, len(t))
	floats.SubTo(yearly, column(t, FieldIncomes), column(t, FieldExpenses))

	for i := range t {
		t[i].Set(FieldBalance, yearly[i])
	}
	past := shiftWithinGroup(t, cumulativeSumPerGroup(t, FieldBalance), 1, 0)

	for i := range t {
		r := &t[i]
		r.Set(FieldPast, past[i])
		r.Set(FieldBalance, past[i]+r.Get(FieldIncomes)-r.Get(FieldExpenses))
		r.Set(FieldDelta, r.Get(FieldHave)-r.Get(FieldBalance))
	}
}

// SavingProfile tracks invested capital against market value. Pensions use the
// same arithmetic with their own table.
type SavingProfile struct {
	kind    domain.ProfileKind
	storage Storage
}

func (p SavingProfile) Kind() domain.ProfileKind { return p.kind }

func (SavingProfile) FieldMap() map[Role]map[RawField]Field {
	return map[Role]map[RawField]Field{
		RoleIncomes:  {RawIncomes: FieldPerYearIncomes, RawFee: FieldPerYearFee},
		RoleExpenses: {RawExpenses: FieldSold, RawFee: FieldSoldFee},
	}
}

func (SavingProfile) SnapshotField() Field { return FieldMarketValue }

func (SavingProfile) Fields() []Field {
	return []Field{
		FieldPastAmount, FieldPastFee, FieldFee,
		FieldPerYearIncomes, FieldPerYearFee,
		FieldSold, FieldSoldFee,
		FieldIncomes, FieldInvested,
		FieldMarketValue, FieldProfitSum, FieldProfitProc,
	}
}

func (p SavingProfile) Storage() Storage { return p.storage }

// Accumulate computes the saving columns. past_amount and past_fee exclude the
// current year; sold and sold_fee include it.
func (SavingProfile) Accumulate(t Table) {
	pastAmount := shiftWithinGroup(t, cumulativeSumPerGroup(t, FieldPerYearIncomes), 1, 0)
	pastFee := shiftWithinGroup(t, cumulativeSumPerGroup(t, FieldPerYearFee), 1, 0)
	sold := cumulativeSumPerGroup(t, FieldSold)
	soldFee := cumulativeSumPerGroup(t, FieldSoldFee)

	for i := range t {
		r := &t[i]
		r.Set(FieldPastAmount, pastAmount[i])
		r.Set(FieldPastFee, pastFee[i])
		r.Set(FieldSold, sold[i])
		r.Set(FieldSoldFee, soldFee[i])

		incomes := pastAmount[i] + r.Get(FieldPerYearIncomes)
		fee := pastFee[i] + r.Get(FieldPerYearFee)
		r.Set(FieldIncomes, incomes)
		r.Set(FieldFee, fee)

		invested := incomes - fee - sold[i] - soldFee[i]
		if invested < 0 {
			invested = 0
		}
		r.Set(FieldInvested, invested)

		marketValue := r.Get(FieldMarketValue)
		r.Set(FieldProfitSum, marketValue-incomes-fee)
		r.Set(FieldProfitProc, profitPercent(marketValue, incomes, fee))
	}
}

// profitPercent is ((market_value - fee) / incomes) * 100 - 100 rounded to two
// decimals, or 0 when either market_value or incomes is zero
func profitPercent(marketValue, incomes, fee float64) float64 {
	if marketValue == 0 || incomes == 0 {
		return 0
	}
	return scalar.Round(((marketValue-fee)/incomes)*100-100, 2)
}
