package rates

import (
	"fmt"
	"time"
)

// FreshnessPolicy decides whether a cached snapshot is older than the most
// recent publication the publisher is expected to have made. The publisher
// releases once per weekday after Cutoff in its own time zone. Public
// holidays are not modelled; a missed holiday only means one extra fetch.
type FreshnessPolicy struct {
	CutoffHour   int
	CutoffMinute int
	Location     *time.Location
}

// DefaultFreshnessPolicy returns the ECB schedule: 16:00 Central European Time.
// When the zone database is unavailable the policy falls back to UTC.
func DefaultFreshnessPolicy() FreshnessPolicy {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}
	return FreshnessPolicy{CutoffHour: 16, CutoffMinute: 0, Location: loc}
}

// ParseCutoff parses an "HH:MM" cutoff and zone name into a policy.
func ParseCutoff(cutoff, zone string) (FreshnessPolicy, error) {
	t, err := time.Parse("15:04", cutoff)
	if err != nil {
		return FreshnessPolicy{}, fmt.Errorf("invalid cutoff %q: %w", cutoff, err)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return FreshnessPolicy{}, fmt.Errorf("invalid publisher time zone %q: %w", zone, err)
	}
	return FreshnessPolicy{CutoffHour: t.Hour(), CutoffMinute: t.Minute(), Location: loc}, nil
}

// ExpectedPublication returns the calendar date of the newest publication
// expected to exist at now.
func (p FreshnessPolicy) ExpectedPublication(now time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	expected := DateOf(local)

	// Cutoff not reached yet: yesterday's release is the latest one.
	if local.Hour() < p.CutoffHour || (local.Hour() == p.CutoffHour && local.Minute() < p.CutoffMinute) {
		expected = expected.AddDate(0, 0, -1)
	}

	switch expected.Weekday() {
	case time.Saturday:
		expected = expected.AddDate(0, 0, -1)
	case time.Sunday:
		expected = expected.AddDate(0, 0, -2)
	}
	return expected
}

// IsStale reports whether a snapshot published on cached predates the
// newest expected publication.
func (p FreshnessPolicy) IsStale(cached, now time.Time) bool {
	return DateOf(cached).Before(p.ExpectedPublication(now))
}
