/*
Package generic provides the domain-agnostic primitives the leave engine is
built on.

PURPOSE:
  Leave accounting is day arithmetic over calendar dates. This package holds
  the quantities and calendar helpers that carry no leave-specific policy:
  whether a day is deductible, how a half-day is counted, or how much accrues
  per month is decided in the leave package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 1.5 days, 0.5 days)
  - Entity IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so 1.5 * 6 is exactly 9
  2. Type Safety: Strong typing for IDs prevents mixing employee/request IDs

USAGE:
  accrued := generic.NewAmount(1.5, generic.UnitDays).Mul(decimal.NewFromInt(6))
  remaining := accrued.Sub(taken).Max(generic.Days(0))

SEE ALSO:
  - time.go: TimePoint and calendar utilities
  - period.go: Inclusive date windows
  - errors.go: Sentinel errors
*/
package generic

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (always time-based for this system)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays Unit = "days"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Days is shorthand for an amount in days.
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Float64() float64             { f, _ := a.Value.Float64(); return f }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// String renders the value without trailing zeros, e.g. "1.5 days".
func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}

// MarshalJSON emits the bare number so UI code can treat days as a float.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Float64())
}

// UnmarshalJSON reads a bare number (or numeric string) as days.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Amount{Value: d, Unit: UnitDays}
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RequestID string
