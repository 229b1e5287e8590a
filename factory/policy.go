/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON policy definitions into leave.Policy values. HR can change
  the accrual rate, the deductible set or the half-day rule by editing a
  file that the server loads at startup (-policy / POLICY_FILE).

JSON SCHEMA:
  {
    "accrual_rate_per_month": 1.5,
    "deductible_types": ["annual", "sick", "personal", "halfday"],
    "rules": {
      "halfday": {"fixed_days": 0.5}
    }
  }

DEFAULTS:
  Missing accrual_rate_per_month -> leave.DefaultAccrualRatePerMonth
  Missing deductible_types       -> leave.DefaultPolicy() deductible set
  Missing rules                  -> no per-type rules (span counts)

  An explicitly empty deductible_types list is honoured: nothing deducts.

VALIDATION:
  Unknown leave types, negative rates, negative fixed_days and negative
  multipliers are rejected; the server refuses to start on a bad file.

USAGE:
  factory := NewPolicyFactory()
  policy, err := factory.ParsePolicy(StandardPolicyJSON())
  policy, err := factory.LoadFile("/etc/leave/policy.json")

SEE ALSO:
  - leave/policy.go: Policy type definition
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a leave policy.
type PolicyJSON struct {
	AccrualRatePerMonth *float64            `json:"accrual_rate_per_month,omitempty"`
	DeductibleTypes     *[]string           `json:"deductible_types,omitempty"`
	Rules               map[string]RuleJSON `json:"rules,omitempty"`
}

// RuleJSON represents the quantity rule of one leave type.
type RuleJSON struct {
	FixedDays  *float64 `json:"fixed_days,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to leave.Policy.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (leave.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return leave.Policy{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// LoadFile reads and parses a policy file.
func (f *PolicyFactory) LoadFile(path string) (leave.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return leave.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return f.ParsePolicy(string(data))
}

// FromJSON converts PolicyJSON to leave.Policy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (leave.Policy, error) {
	policy := leave.DefaultPolicy()

	if pj.AccrualRatePerMonth != nil {
		if *pj.AccrualRatePerMonth < 0 {
			return leave.Policy{}, fmt.Errorf("accrual_rate_per_month must not be negative: %v", *pj.AccrualRatePerMonth)
		}
		policy.AccrualRatePerMonth = decimal.NewFromFloat(*pj.AccrualRatePerMonth)
	}

	if pj.DeductibleTypes != nil {
		policy.Deductible = make(map[leave.LeaveType]bool, len(*pj.DeductibleTypes))
		for _, s := range *pj.DeductibleTypes {
			t, err := leave.ParseLeaveType(s)
			if err != nil {
				return leave.Policy{}, fmt.Errorf("deductible_types: %w", err)
			}
			policy.Deductible[t] = true
		}
	}

	if pj.Rules != nil {
		policy.Rules = make(map[leave.LeaveType]leave.TypeRule, len(pj.Rules))
		for s, rj := range pj.Rules {
			t, err := leave.ParseLeaveType(s)
			if err != nil {
				return leave.Policy{}, fmt.Errorf("rules: %w", err)
			}
			rule, err := parseRule(rj)
			if err != nil {
				return leave.Policy{}, fmt.Errorf("rules.%s: %w", s, err)
			}
			policy.Rules[t] = rule
		}
	}

	return policy, nil
}

// ToJSON converts a Policy to PolicyJSON.
func (f *PolicyFactory) ToJSON(policy leave.Policy) PolicyJSON {
	rate, _ := policy.AccrualRatePerMonth.Float64()
	types := make([]string, 0, len(policy.Deductible))
	for _, t := range policy.DeductibleTypes() {
		types = append(types, string(t))
	}

	pj := PolicyJSON{
		AccrualRatePerMonth: &rate,
		DeductibleTypes:     &types,
	}

	if len(policy.Rules) > 0 {
		pj.Rules = make(map[string]RuleJSON, len(policy.Rules))
		keys := make([]string, 0, len(policy.Rules))
		for t := range policy.Rules {
			keys = append(keys, string(t))
		}
		sort.Strings(keys)
		for _, k := range keys {
			rule := policy.Rules[leave.LeaveType(k)]
			var rj RuleJSON
			if rule.FixedDays != nil {
				v, _ := rule.FixedDays.Float64()
				rj.FixedDays = &v
			}
			if rule.Multiplier != nil {
				v, _ := rule.Multiplier.Float64()
				rj.Multiplier = &v
			}
			pj.Rules[k] = rj
		}
	}

	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRule(rj RuleJSON) (leave.TypeRule, error) {
	var rule leave.TypeRule
	if rj.FixedDays != nil {
		if *rj.FixedDays < 0 {
			return rule, fmt.Errorf("fixed_days must not be negative: %v", *rj.FixedDays)
		}
		d := decimal.NewFromFloat(*rj.FixedDays)
		rule.FixedDays = &d
	}
	if rj.Multiplier != nil {
		if *rj.Multiplier < 0 {
			return rule, fmt.Errorf("multiplier must not be negative: %v", *rj.Multiplier)
		}
		m := decimal.NewFromFloat(*rj.Multiplier)
		rule.Multiplier = &m
	}
	return rule, nil
}

// =============================================================================
// PRESET POLICIES
// =============================================================================

// StandardPolicyJSON is the JSON form of leave.DefaultPolicy.
func StandardPolicyJSON() string {
	return `{
  "accrual_rate_per_month": 1.5,
  "deductible_types": ["annual", "sick", "personal", "halfday"],
  "rules": {
    "halfday": {"fixed_days": 0.5}
  }
}`
}

// AnnualOnlyPolicyJSON deducts only annual leave and half days; sick and
// personal leave are tracked for reporting but never reduce the balance.
func AnnualOnlyPolicyJSON(ratePerMonth float64) string {
	return fmt.Sprintf(`{
  "accrual_rate_per_month": %g,
  "deductible_types": ["annual", "halfday"],
  "rules": {
    "halfday": {"fixed_days": 0.5}
  }
}`, ratePerMonth)
}
