/*
policy.go - Injectable leave policy

PURPOSE:
  Which leave types reduce the balance, how many days a request is worth,
  and how fast leave accrues are policy decisions. They live here as data,
  so adding a leave type or changing the half-day rule is a table edit, not
  a code change scattered across the calculator and the reporting path.

POLICY COMPONENTS:
  AccrualRatePerMonth: Days granted per whole month of employment (1.5)
  Deductible:          Types whose approved/pending days reduce the balance
  Rules:               Per-type quantity rule (fixed quantity or multiplier)

DEFAULTS:
  annual, sick, personal, halfday are deductible.
  unpaid and other are reporting-only.
  halfday is always 0.5 day, regardless of its date span.

SEE ALSO:
  - classifier.go: Applies Rules
  - factory/policy.go: JSON policy definitions
*/
package leave

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultAccrualRatePerMonth is the accrual rate used by DefaultPolicy.
var DefaultAccrualRatePerMonth = decimal.RequireFromString("1.5")

// TypeRule defines how a request of one leave type is quantified.
type TypeRule struct {
	// FixedDays, when set, is the quantity of every request of this type.
	// Such requests are never split across months.
	FixedDays *decimal.Decimal

	// Multiplier, when set, scales the inclusive day span. Nil means 1;
	// zero makes the type count for nothing.
	Multiplier *decimal.Decimal
}

func (r TypeRule) multiplier() decimal.Decimal {
	if r.Multiplier == nil {
		return decimal.NewFromInt(1)
	}
	return *r.Multiplier
}

// Policy is the leave accounting policy applied by the engine.
type Policy struct {
	AccrualRatePerMonth decimal.Decimal
	Deductible          map[LeaveType]bool
	Rules               map[LeaveType]TypeRule
}

// DefaultPolicy returns the standard policy.
func DefaultPolicy() Policy {
	half := decimal.RequireFromString("0.5")
	return Policy{
		AccrualRatePerMonth: DefaultAccrualRatePerMonth,
		Deductible: map[LeaveType]bool{
			TypeAnnual:   true,
			TypeSick:     true,
			TypePersonal: true,
			TypeHalfDay:  true,
		},
		Rules: map[LeaveType]TypeRule{
			TypeHalfDay: {FixedDays: &half},
		},
	}
}

// IsDeductible reports whether days of type t count against the balance.
func (p Policy) IsDeductible(t LeaveType) bool {
	return p.Deductible[t]
}

// Rule returns the quantity rule for t. Unlisted types count their day span.
func (p Policy) Rule(t LeaveType) TypeRule {
	return p.Rules[t]
}

// DeductibleTypes returns the deductible set in a stable order.
func (p Policy) DeductibleTypes() []LeaveType {
	var out []LeaveType
	for t, ok := range p.Deductible {
		if ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
