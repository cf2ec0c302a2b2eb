package leave

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// RULE FACTORY - type name -> Rule
// =============================================================================

// NewRule builds the rule for a leave type. The name is matched
// case-insensitively. Motif is consulted only for exceptional leave; an
// empty motif there is deliberately left unrecognized so callers must
// pick one explicitly.
func NewRule(typeName string, start, end time.Time, motif string) (Rule, error) {
	p := period{start: start, end: end}

	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case TypeAnnual:
		return AnnualRule{p}, nil
	case TypeSick:
		return SickRule{p}, nil
	case TypeExceptional:
		return ExceptionalRule{period: p, Motif: strings.ToLower(strings.TrimSpace(motif))}, nil
	case TypeUnpaid:
		return UnpaidRule{p}, nil
	case TypeParental:
		return ParentalRule{p}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLeaveType, typeName)
	}
}

// KnownTypes lists the canonical type names the factory accepts.
func KnownTypes() []string {
	return []string{TypeAnnual, TypeSick, TypeExceptional, TypeUnpaid, TypeParental}
}
