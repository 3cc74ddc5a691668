package rates

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Pivot is the currency all snapshot rates are expressed against.
const Pivot = "EUR"

// DateLayout is the ISO-8601 calendar date layout used by the feed and the cache.
const DateLayout = "2006-01-02"

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Snapshot is one dated, complete set of reference rates. Rates maps a
// currency code to the number of units of that currency equal to one unit
// of the pivot. A Snapshot must not be mutated after construction.
type Snapshot struct {
	PublishedOn time.Time
	Rates       map[string]decimal.Decimal
}

// NewSnapshot validates rates and returns a snapshot dated on the calendar
// day of publishedOn. The pivot entry is added when missing.
func NewSnapshot(publishedOn time.Time, rates map[string]decimal.Decimal) (Snapshot, error) {
	out := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		if !codePattern.MatchString(code) {
			return Snapshot{}, fmt.Errorf("invalid currency code %q", code)
		}
		if !rate.IsPositive() {
			return Snapshot{}, fmt.Errorf("rate for %s must be positive, got %s", code, rate)
		}
		out[code] = rate
	}
	if pivot, ok := out[Pivot]; !ok {
		out[Pivot] = decimal.NewFromInt(1)
	} else if !pivot.Equal(decimal.NewFromInt(1)) {
		return Snapshot{}, fmt.Errorf("pivot %s must have rate 1, got %s", Pivot, pivot)
	}
	return Snapshot{PublishedOn: DateOf(publishedOn), Rates: out}, nil
}

// DateOf strips the clock from t, keeping its calendar day as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Rate returns the rate for code.
func (s Snapshot) Rate(code string) (decimal.Decimal, bool) {
	r, ok := s.Rates[code]
	return r, ok
}

// Codes returns the known currency codes sorted alphabetically.
func (s Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Equal reports whether both snapshots carry the same date and rates.
// Rates compare numerically, so "1.10" equals "1.1".
func (s Snapshot) Equal(o Snapshot) bool {
	if !s.PublishedOn.Equal(o.PublishedOn) || len(s.Rates) != len(o.Rates) {
		return false
	}
	for code, rate := range s.Rates {
		other, ok := o.Rates[code]
		if !ok || !rate.Equal(other) {
			return false
		}
	}
	return true
}

// IsZero reports whether the snapshot was never populated.
func (s Snapshot) IsZero() bool {
	return s.PublishedOn.IsZero() && len(s.Rates) == 0
}
