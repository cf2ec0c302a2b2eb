/*
rules.go - Per-type leave rules

PURPOSE:
  Each leave type carries its own admissibility and deduction behavior
  behind the Rule interface. The orchestrator never switches on type
  names; it asks the rule.

AVAILABLE RULES:
  Annual:      checked against and deducted from the employee balance
  Sick:        never touches the balance; >3 days flags a justification
  Exceptional: bounded by a per-motif duration table, no deduction
  Unpaid:      always admissible, no deduction
  Parental:    capped at 120 days per request, no deduction

DISPATCH:
  The original design used class inheritance; here each variant is a
  small struct implementing Rule, built by the factory in factory.go.

SEE ALSO:
  - factory.go: type-name -> Rule construction
  - service.go: where rules gate submission and approval
*/
package leave

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// RULE INTERFACE
// =============================================================================

// Rule is the per-type behavior of a leave request.
type Rule interface {
	// TypeName returns the canonical type name persisted with the request.
	TypeName() string

	// RequiresBalanceCheck reports whether admissibility depends on the
	// employee's current balance.
	RequiresBalanceCheck() bool

	// DeductsFromBalance reports whether approval consumes balance days.
	DeductsFromBalance() bool

	// Days returns the inclusive duration of the request.
	Days() int

	// DeductibleDays returns the days consumed on approval. Only consulted
	// when DeductsFromBalance is true.
	DeductibleDays() int

	// Validate decides admissibility against the employee's current
	// balance, returning a human-readable reason on rejection.
	Validate(currentBalance int) (bool, string)
}

// Canonical type names, persisted in the leave_type column.
const (
	TypeAnnual      = "annual"
	TypeSick        = "sick"
	TypeExceptional = "exceptional"
	TypeUnpaid      = "unpaid"
	TypeParental    = "parental"
)

// period is the shared duration arithmetic embedded in every rule.
type period struct {
	start time.Time
	end   time.Time
}

func (p period) Days() int           { return DaysInclusive(p.start, p.end) }
func (p period) DeductibleDays() int { return p.Days() }

// defaultValidate is the rule for types without an override: admissible
// unless a balance check is required and the deductible days exceed it.
func defaultValidate(r Rule, currentBalance int) (bool, string) {
	if !r.RequiresBalanceCheck() {
		return true, "ok (no balance check required)"
	}
	need := r.DeductibleDays()
	if need > currentBalance {
		return false, insufficientBalanceReason(need, currentBalance)
	}
	return true, "ok"
}

// =============================================================================
// ANNUAL - The only type that consumes balance
// =============================================================================

type AnnualRule struct{ period }

func (r AnnualRule) TypeName() string           { return TypeAnnual }
func (r AnnualRule) RequiresBalanceCheck() bool { return true }
func (r AnnualRule) DeductsFromBalance() bool   { return true }

func (r AnnualRule) Validate(currentBalance int) (bool, string) {
	return defaultValidate(r, currentBalance)
}

// =============================================================================
// SICK - Free of balance, flags justification past 3 days
// =============================================================================

type SickRule struct{ period }

func (r SickRule) TypeName() string           { return TypeSick }
func (r SickRule) RequiresBalanceCheck() bool { return false }
func (r SickRule) DeductsFromBalance() bool   { return false }

func (r SickRule) Validate(currentBalance int) (bool, string) {
	return defaultValidate(r, currentBalance)
}

// RequiresJustification reports whether a medical certificate is expected.
// Informational only, never an admissibility gate.
func (r SickRule) RequiresJustification() bool { return r.Days() > 3 }

// =============================================================================
// EXCEPTIONAL - Bounded by a per-motif duration table
// =============================================================================

// MotifDurations is the closed table of recognized reason codes and the
// maximum duration each allows.
var MotifDurations = map[string]int{
	"marriage":             4,
	"birth":                3,
	"close_relative_death": 3,
	"relocation":           1,
}

type ExceptionalRule struct {
	period
	Motif string // lower-cased reason code
}

func (r ExceptionalRule) TypeName() string           { return TypeExceptional }
func (r ExceptionalRule) RequiresBalanceCheck() bool { return false }
func (r ExceptionalRule) DeductsFromBalance() bool   { return false }

// MaxDays returns the allowed duration for the motif, 0 when unknown.
func (r ExceptionalRule) MaxDays() int { return MotifDurations[r.Motif] }

func (r ExceptionalRule) Validate(currentBalance int) (bool, string) {
	max, ok := MotifDurations[r.Motif]
	if !ok {
		return false, fmt.Sprintf("unrecognized motif %q (valid: %s)", r.Motif, knownMotifs())
	}
	if days := r.Days(); days > max {
		return false, fmt.Sprintf("maximum duration for %q is %d days (requested %d)", r.Motif, max, days)
	}
	return true, "ok"
}

func knownMotifs() string {
	motifs := make([]string, 0, len(MotifDurations))
	for m := range MotifDurations {
		motifs = append(motifs, m)
	}
	sort.Strings(motifs)
	return strings.Join(motifs, ", ")
}

// =============================================================================
// UNPAID - Always admissible
// =============================================================================

type UnpaidRule struct{ period }

func (r UnpaidRule) TypeName() string           { return TypeUnpaid }
func (r UnpaidRule) RequiresBalanceCheck() bool { return false }
func (r UnpaidRule) DeductsFromBalance() bool   { return false }

func (r UnpaidRule) Validate(currentBalance int) (bool, string) {
	return defaultValidate(r, currentBalance)
}

// =============================================================================
// PARENTAL - Annual ceiling per request
// =============================================================================

// ParentalMaxDays is the yearly ceiling. Not tracked across requests.
const ParentalMaxDays = 120

type ParentalRule struct{ period }

func (r ParentalRule) TypeName() string           { return TypeParental }
func (r ParentalRule) RequiresBalanceCheck() bool { return false }
func (r ParentalRule) DeductsFromBalance() bool   { return false }

func (r ParentalRule) Validate(currentBalance int) (bool, string) {
	if days := r.Days(); days > ParentalMaxDays {
		return false, fmt.Sprintf("maximum parental leave is %d days per year (requested %d)", ParentalMaxDays, days)
	}
	return true, "ok"
}
