package rates

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot_AddsPivot(t *testing.T) {
	snap := mustSnapshot(t, "2024-05-17", map[string]string{"USD": "1.0867"})

	rate, ok := snap.Rate(Pivot)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, []string{"EUR", "USD"}, snap.Codes())
}

func TestNewSnapshot_StripsClock(t *testing.T) {
	at := time.Date(2024, 5, 17, 15, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	snap, err := NewSnapshot(at, map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.08")})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), snap.PublishedOn)
}

func TestNewSnapshot_Rejects(t *testing.T) {
	day := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	tests := map[string]map[string]decimal.Decimal{
		"lowercase code": {"usd": decimal.NewFromInt(1)},
		"long code":      {"USDX": decimal.NewFromInt(1)},
		"zero rate":      {"USD": decimal.Zero},
		"negative rate":  {"USD": decimal.NewFromInt(-2)},
		"pivot not one":  {"EUR": decimal.RequireFromString("1.01")},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewSnapshot(day, values)
			assert.Error(t, err)
		})
	}
}

func TestSnapshot_EqualComparesNumerically(t *testing.T) {
	a := mustSnapshot(t, "2024-05-17", map[string]string{"USD": "1.10"})
	b := mustSnapshot(t, "2024-05-17", map[string]string{"USD": "1.1"})
	c := mustSnapshot(t, "2024-05-16", map[string]string{"USD": "1.1"})
	d := mustSnapshot(t, "2024-05-17", map[string]string{"USD": "1.1", "JPY": "169"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

func TestSnapshot_IsZero(t *testing.T) {
	assert.True(t, Snapshot{}.IsZero())
	assert.False(t, sampleSnapshot(t, "2024-05-17").IsZero())
}
