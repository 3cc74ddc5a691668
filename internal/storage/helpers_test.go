package storage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/seblin/curpy/internal/rates"
)

func testSnapshot(t *testing.T, date string) rates.Snapshot {
	t.Helper()
	published, err := time.Parse(rates.DateLayout, date)
	require.NoError(t, err)
	snap, err := rates.NewSnapshot(published, map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("1.0867"),
		"JPY": decimal.RequireFromString("169.03"),
		"GBP": decimal.RequireFromString("0.85435"),
		// More digits than a float64 can carry.
		"XAU": decimal.RequireFromString("0.000432101234567890123"),
	})
	require.NoError(t, err)
	return snap
}
