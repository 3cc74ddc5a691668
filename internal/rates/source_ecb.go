package rates

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/seblin/curpy/internal/metrics"
)

// ECBDailyURL is the ECB euro foreign exchange reference rates feed.
const ECBDailyURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// ecbEnvelope mirrors the parts of the gesmes envelope we read:
//
//	<Cube><Cube time="2024-05-17"><Cube currency="USD" rate="1.0867"/>...</Cube></Cube>
type ecbEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Days    []ecbDay `xml:"Cube>Cube"`
}

type ecbDay struct {
	Time  string    `xml:"time,attr"`
	Rates []ecbRate `xml:"Cube"`
}

type ecbRate struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

// ParseECB parses an ECB daily reference document. Rates are read from the
// attribute text straight into decimals; EUR is added with rate 1.
func ParseECB(r io.Reader) (Snapshot, error) {
	var env ecbEnvelope
	if err := xml.NewDecoder(r).Decode(&env); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode xml: %v", ErrSourceFormat, err)
	}
	if len(env.Days) == 0 || env.Days[0].Time == "" {
		return Snapshot{}, fmt.Errorf("%w: no dated Cube element", ErrSourceFormat)
	}
	day := env.Days[0]

	published, err := ParseDate(day.Time)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: bad date %q", ErrSourceFormat, day.Time)
	}

	values := make(map[string]decimal.Decimal, len(day.Rates)+1)
	for _, entry := range day.Rates {
		code := strings.ToUpper(strings.TrimSpace(entry.Currency))
		rate, err := decimal.NewFromString(strings.TrimSpace(entry.Rate))
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: bad rate %q for %s", ErrSourceFormat, entry.Rate, code)
		}
		values[code] = rate
	}

	snap, err := NewSnapshot(published, values)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSourceFormat, err)
	}
	return snap, nil
}

// ECBSource fetches the daily snapshot over HTTP. It performs exactly one
// request per Fetch and never retries.
type ECBSource struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewECBSource returns a source for url. Empty url means ECBDailyURL and a
// nil client means DefaultHTTPClient().
func NewECBSource(url string, client *http.Client, logger *slog.Logger) *ECBSource {
	if url == "" {
		url = ECBDailyURL
	}
	if client == nil {
		client = DefaultHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ECBSource{url: url, client: client, logger: logger}
}

// Fetch downloads and parses the feed.
func (s *ECBSource) Fetch(ctx context.Context) (Snapshot, error) {
	snap, err := s.fetch(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.FeedFetchesTotal.WithLabelValues(outcome).Inc()
	return snap, err
}

func (s *ECBSource) fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: build request: %w", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/xml")

	s.logger.Debug("fetching reference rates", "url", s.url)
	resp, err := s.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s might be offline: %w", ErrSourceUnavailable, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Snapshot{}, fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, s.url, resp.StatusCode)
	}
	return ParseECB(resp.Body)
}
