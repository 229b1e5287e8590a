package leave

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// CLASSIFIER - Request -> day quantity
// =============================================================================

// Classifier maps a leave request to its day quantity using the policy's
// per-type rules. It does not filter by date or by deductibility; the
// calculator applies the as-of cutoff and the deductible set, while the
// apportioner reports every type.
type Classifier struct {
	Policy Policy
}

// DeductibleDays returns the day quantity of r: the fixed quantity for
// types like halfday, otherwise the inclusive day span times the type's
// multiplier. Malformed requests yield a *MalformedLeaveRequestError.
func (c Classifier) DeductibleDays(r LeaveRequest) (generic.Amount, error) {
	if err := r.Validate(); err != nil {
		return generic.Days(0), err
	}

	rule := c.Policy.Rule(r.Type)
	if rule.FixedDays != nil {
		return generic.Amount{Value: *rule.FixedDays, Unit: generic.UnitDays}, nil
	}

	span := decimal.NewFromInt(int64(generic.DaySpan(r.StartDate, r.EndDate)))
	return generic.Amount{Value: span.Mul(rule.multiplier()), Unit: generic.UnitDays}, nil
}

// IsFixed reports whether requests of type t have a span-independent
// quantity. Fixed-quantity requests are assigned whole to their start month.
func (c Classifier) IsFixed(t LeaveType) bool {
	return c.Policy.Rule(t).FixedDays != nil
}
