package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seblin/curpy/internal/rates"
	"github.com/seblin/curpy/internal/storage"
)

type offlineSource struct{}

func (offlineSource) Fetch(context.Context) (rates.Snapshot, error) {
	return rates.Snapshot{}, errors.New("feed offline")
}

func newTestServer(t *testing.T, withSnapshot bool) *httptest.Server {
	t.Helper()
	published := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	snap, err := rates.NewSnapshot(published, map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("1.0867"),
		"JPY": decimal.RequireFromString("169.03"),
	})
	require.NoError(t, err)

	st := storage.NewMemory()
	if withSnapshot {
		st = storage.NewMemoryWithSnapshot(snap)
	}
	// Saturday: Friday's snapshot is current.
	now := time.Date(2024, 5, 18, 12, 0, 0, 0, time.UTC)
	repo := rates.NewRepository(st, offlineSource{}, rates.DefaultFreshnessPolicy(),
		rates.WithClock(func() time.Time { return now }))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewMux(rates.NewService(repo), st, logger))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, rawURL string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestConvertEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	q := url.Values{"q": {"42.23 EUR in USD"}}
	resp, body := get(t, srv.URL+"/convert?"+q.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out ConvertResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "45.89", out.Result)
	assert.Equal(t, 2, out.Precision)
	assert.Equal(t, "2024-05-17", out.PublishedOn)

	q = url.Values{"q": {"1 EUR in USD"}, "precision": {"64"}}
	resp, body = get(t, srv.URL+"/convert?"+q.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "1."+"0867"+strings.Repeat("0", 60), out.Result)

	q = url.Values{"q": {"100 usd in eur"}, "precision": {"4"}, "add_currency": {"true"}}
	_, body = get(t, srv.URL+"/convert?"+q.Encode())
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "92.0217 EUR", out.Result)
}

func TestConvertEndpoint_BadRequests(t *testing.T) {
	srv := newTestServer(t, true)

	tests := map[string]url.Values{
		"malformed":          {"q": {"42.23 EUR to USD"}},
		"unknown currency":   {"q": {"1 EUR in XYZ"}},
		"negative precision": {"q": {"1 EUR in USD"}, "precision": {"-1"}},
		"bad precision":      {"q": {"1 EUR in USD"}, "precision": {"two"}},
		"bad add_currency":   {"q": {"1 EUR in USD"}, "add_currency": {"maybe"}},
		"precision 2^31":     {"q": {"1 EUR in USD"}, "precision": {"2147483648"}},
		"precision 2^32+2":   {"q": {"1 EUR in USD"}, "precision": {"4294967298"}},
		"precision too long": {"q": {"1 EUR in USD"}, "precision": {"65"}},
		"precision overflow": {"q": {"1 EUR in USD"}, "precision": {"99999999999999999999999"}},
	}
	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/convert?"+q.Encode())
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestConvertEndpoint_NoRates(t *testing.T) {
	srv := newTestServer(t, false)

	q := url.Values{"q": {"1 EUR in USD"}}
	resp, body := get(t, srv.URL+"/convert?"+q.Encode())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "feed offline")
}

func TestCurrenciesEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	resp, body := get(t, srv.URL+"/currencies")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"codes": ["EUR", "JPY", "USD"]}`, string(body))
}

func TestSnapshotEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	resp, body := get(t, srv.URL+"/snapshot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"rates": {"EUR": 1, "JPY": 169.03, "USD": 1.0867}, "date": "2024-05-17"}`, string(body))
}

func TestRefreshEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	resp, _ := get(t, srv.URL+"/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err := http.Post(srv.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out RefreshResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "2024-05-17", out.PublishedOn)
	assert.Equal(t, 3, out.Currencies)
}

func TestRefreshEndpoint_NoRates(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, true)

	for path, want := range map[string]string{"/healthz": "ok", "/livez": "live", "/readyz": "ready"} {
		resp, body := get(t, srv.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, want, string(body), path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	q := url.Values{"q": {"1 EUR in USD"}}
	get(t, srv.URL+"/convert?"+q.Encode())

	resp, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "curpy_conversions_total"))
	assert.True(t, strings.Contains(string(body), `curpy_http_requests_total{path="/convert"}`))
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, true)

	resp, _ := get(t, srv.URL+"/healthz")
	_, err := uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}
