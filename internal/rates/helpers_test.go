package rates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustSnapshot(t *testing.T, date string, values map[string]string) Snapshot {
	t.Helper()
	r := make(map[string]decimal.Decimal, len(values))
	for code, v := range values {
		r[code] = decimal.RequireFromString(v)
	}
	snap, err := NewSnapshot(mustDate(t, date), r)
	require.NoError(t, err)
	return snap
}

func sampleSnapshot(t *testing.T, date string) Snapshot {
	return mustSnapshot(t, date, map[string]string{
		"USD": "1.0867",
		"JPY": "169.03",
		"GBP": "0.85435",
		"CHF": "0.9861",
	})
}

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

type fakeCache struct {
	mu      sync.Mutex
	snap    *Snapshot
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func (c *fakeCache) Load(context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	if c.snap == nil {
		return nil, nil
	}
	cp := *c.snap
	return &cp, nil
}

func (c *fakeCache) Save(_ context.Context, snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	c.snap = &snap
	// A successful save also repairs a corrupt store.
	c.loadErr = nil
	return nil
}

type fakeSource struct {
	mu      sync.Mutex
	snap    Snapshot
	err     error
	fetches int
}

func (s *fakeSource) Fetch(context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.err != nil {
		return Snapshot{}, s.err
	}
	return s.snap, nil
}
