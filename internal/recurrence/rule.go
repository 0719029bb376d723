// Package recurrence expands calendar template rules into dated occurrences.
package recurrence

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Frequency is the cadence of a recurrence rule.
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

const (
	defaultFrequency     = FrequencyYearly
	defaultInterval      = 1
	defaultDurationDays  = 1
	defaultDurationHours = 0
)

// dateFormats accepted for rule timestamps, tried in order.
var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Rule is a normalized recurrence rule. Build one with ParseRule or NewRule so
// that defaults are applied.
type Rule struct {
	StartAt       time.Time
	Frequency     Frequency
	Interval      int
	DurationDays  int
	DurationHours int
	Until         *time.Time
}

// Duration is the length of each occurrence.
func (r Rule) Duration() time.Duration {
	days := positiveOr(r.DurationDays, defaultDurationDays)
	hours := positiveOr(r.DurationHours, defaultDurationHours)
	return time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour
}

// InvalidRuleWarning reports a rule that could not produce occurrences.
type InvalidRuleWarning struct {
	Reason string
	Cause  error
}

func (w *InvalidRuleWarning) Error() string {
	if w.Cause != nil {
		return fmt.Sprintf("invalid recurrence rule: %s: %v", w.Reason, w.Cause)
	}
	return fmt.Sprintf("invalid recurrence rule: %s", w.Reason)
}

func (w *InvalidRuleWarning) Unwrap() error {
	return w.Cause
}

// ParseFrequency maps a string onto the closed Frequency set. Unknown values
// fall back to yearly.
func ParseFrequency(s string) Frequency {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case FrequencyOnce:
		return FrequencyOnce
	case FrequencyMonthly:
		return FrequencyMonthly
	case FrequencyYearly:
		return FrequencyYearly
	default:
		return defaultFrequency
	}
}

// NewRule returns a rule anchored at startAt with every other field normalized.
func NewRule(startAt time.Time, frequency string, interval, durationDays, durationHours int, until *time.Time) Rule {
	return Rule{
		StartAt:       startAt,
		Frequency:     ParseFrequency(frequency),
		Interval:      positiveOr(interval, defaultInterval),
		DurationDays:  positiveOr(durationDays, defaultDurationDays),
		DurationHours: positiveOr(durationHours, defaultDurationHours),
		Until:         until,
	}
}

// ParseRule decodes template configuration JSON into a Rule. It never fails
// hard: a missing or unparseable anchor yields a warning and a zero Rule.
func ParseRule(raw []byte) (Rule, *InvalidRuleWarning) {
	if len(raw) == 0 {
		return Rule{}, &InvalidRuleWarning{Reason: "empty rule"}
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Rule{}, &InvalidRuleWarning{Reason: "rule is not a JSON object", Cause: err}
	}

	startValue := firstPresent(fields, "startAt", "start_at", "startDate")
	if startValue == nil {
		return Rule{}, &InvalidRuleWarning{Reason: "missing startAt"}
	}
	startAt, err := parseTime(startValue)
	if err != nil {
		return Rule{}, &InvalidRuleWarning{Reason: "unparseable startAt", Cause: err}
	}

	var until *time.Time
	if v := firstPresent(fields, "until", "endAt"); v != nil {
		// A bad cutoff is ignored rather than disabling the whole rule.
		if t, err := parseTime(v); err == nil {
			until = &t
		}
	}

	frequency, _ := firstPresent(fields, "frequency").(string)

	return NewRule(
		startAt,
		frequency,
		intValue(firstPresent(fields, "interval")),
		intValue(firstPresent(fields, "durationDays", "duration_days")),
		intValue(firstPresent(fields, "durationHours", "duration_hours")),
		until,
	), nil
}

func firstPresent(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func parseTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected string timestamp, got %T", v)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// intValue returns 0 for anything that is not a finite whole number so that
// the caller's default applies.
func intValue(v any) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
