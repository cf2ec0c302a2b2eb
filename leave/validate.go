package leave

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// VALIDATORS - Pure input checks, no side effects
// =============================================================================

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidFormat
	}
	return t, nil
}

// ValidateDateFormat checks that s parses as YYYY-MM-DD.
func ValidateDateFormat(s string) error {
	_, err := ParseDate(s)
	return err
}

// ValidatePeriod checks that both dates parse and that end is not before
// start. Format errors take precedence over ordering errors.
func ValidatePeriod(start, end string) error {
	s, err := ParseDate(start)
	if err != nil {
		return err
	}
	e, err := ParseDate(end)
	if err != nil {
		return err
	}
	if e.Before(s) {
		return ErrInvalidPeriod
	}
	return nil
}

// ValidateMatricule checks the business key: non-empty, at least 3 characters.
func ValidateMatricule(m string) error {
	if len(strings.TrimSpace(m)) < 3 {
		return ErrInvalidMatricule
	}
	return nil
}

// ValidateBalance checks that s is a non-negative integer and returns it.
func ValidateBalance(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, ErrInvalidBalance
	}
	return n, nil
}

// DaysInclusive returns the inclusive day count between two dates.
// Same-day periods count as 1.
func DaysInclusive(start, end time.Time) int {
	s := midnightUTC(start)
	e := midnightUTC(end)
	return int(e.Sub(s).Hours()/24) + 1
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
