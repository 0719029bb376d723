package recurrence

import "time"

// MaxOccurrences bounds the occurrences emitted for a single rule.
const MaxOccurrences = 10000

// Occurrence is one concrete, dated instance of a rule.
type Occurrence struct {
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

// Expand parses raw template configuration and expands it over the window.
// A malformed rule returns no occurrences and a warning for the caller to log.
func Expand(raw []byte, rangeStart, rangeEnd time.Time) ([]Occurrence, *InvalidRuleWarning) {
	rule, warning := ParseRule(raw)
	if warning != nil {
		return nil, warning
	}
	return rule.Expand(rangeStart, rangeEnd), nil
}

// EffectiveEnd is the earlier of Until and rangeEnd.
func (r Rule) EffectiveEnd(rangeEnd time.Time) time.Time {
	if r.Until != nil && r.Until.Before(rangeEnd) {
		return *r.Until
	}
	return rangeEnd
}

// Expand returns every occurrence whose start lies in the closed window
// [rangeStart, min(Until, rangeEnd)], in ascending order, up to
// MaxOccurrences.
//
// Each step is computed from the anchor with time.AddDate, so day-of-month
// overflow normalizes forward (Jan 31 + 1 month is Mar 2 or Mar 3) without
// drifting later occurrences. The walk starts at the first step that can reach
// the window, so an anchor far in the past keeps its phase without stepping
// through every earlier period.
func (r Rule) Expand(rangeStart, rangeEnd time.Time) []Occurrence {
	if r.StartAt.IsZero() {
		return nil
	}

	end := r.EffectiveEnd(rangeEnd)
	duration := r.Duration()
	interval := positiveOr(r.Interval, defaultInterval)
	frequency := ParseFrequency(string(r.Frequency))

	step := 0
	if frequency != FrequencyOnce {
		step = r.firstStep(frequency, interval, rangeStart)
	}
	cursor := r.at(frequency, step*interval)

	var out []Occurrence
	for len(out) < MaxOccurrences && !cursor.After(end) {
		if !cursor.Before(rangeStart) {
			out = append(out, Occurrence{StartAt: cursor, EndAt: cursor.Add(duration)})
		}
		if frequency == FrequencyOnce {
			return out
		}

		step++
		next := r.at(frequency, step*interval)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}
	return out
}

// at is the anchor advanced by n periods.
func (r Rule) at(frequency Frequency, n int) time.Time {
	switch frequency {
	case FrequencyMonthly:
		return r.StartAt.AddDate(0, n, 0)
	case FrequencyYearly:
		return r.StartAt.AddDate(n, 0, 0)
	default:
		return r.StartAt
	}
}

// firstStep is a step index at or just before the first occurrence on or
// after rangeStart. It backs off one step so day-of-month overflow can never
// skip an occurrence.
func (r Rule) firstStep(frequency Frequency, interval int, rangeStart time.Time) int {
	var periods int
	switch frequency {
	case FrequencyMonthly:
		periods = (rangeStart.Year()-r.StartAt.Year())*12 + int(rangeStart.Month()) - int(r.StartAt.Month())
	case FrequencyYearly:
		periods = rangeStart.Year() - r.StartAt.Year()
	}
	step := periods/interval - 1
	if step < 0 {
		return 0
	}
	return step
}
