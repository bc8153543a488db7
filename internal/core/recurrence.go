package core

import (
	"fmt"
	"time"
)

// sameDayCutoffHour: once the local hour reaches 18, a same-day slot is
// treated as already passed and the occurrence rolls a full week forward.
const sameDayCutoffHour = 18

// Validate checks that a rule is well-formed.
func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrValidation, r.Frequency)
	}

	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("%w: day_of_week must be in [0,6], got %d", ErrValidation, r.DayOfWeek)
	}

	if _, _, err := parseClock(r.TimeOfDay); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return nil
}

// NextOccurrence computes the next future instant matching the rule's
// day-of-week and time-of-day. The rule must be valid (see Validate); the
// result is strictly after now.
func NextOccurrence(now time.Time, r Rule) time.Time {
	hour, minute, _ := parseClock(r.TimeOfDay)

	daysAhead := (r.DayOfWeek - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.Hour() >= sameDayCutoffHour || !candidate.After(now) {
			daysAhead = 7
		}
	}

	return time.Date(now.Year(), now.Month(), now.Day()+daysAhead, hour, minute, 0, 0, now.Location())
}

// Advance moves an occurrence forward by one interval. Monthly is a fixed
// 30-day offset, not calendar-month arithmetic.
func Advance(t time.Time, frequency string) time.Time {
	switch frequency {
	case FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return t.AddDate(0, 0, 30)
	default:
		return t.AddDate(0, 0, 7)
	}
}

func parseClock(s string) (int, int, error) {
	// Strict parse: trailing text ("10:00pm", "10:00:30") must be rejected,
	// not silently dropped.
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("time_of_day must be 24-hour HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
