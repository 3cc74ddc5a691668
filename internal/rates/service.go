package rates

import (
	"context"
	"time"

	"github.com/seblin/curpy/internal/metrics"
)

// Service is the library surface used by the CLI and the HTTP API.
type Service struct {
	repo *Repository
}

// NewService returns a Service backed by repo.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.repo.Current(ctx)
}

// Refresh forces a staleness check and, if needed, a fetch.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	return s.repo.Refresh(ctx)
}

// Codes lists the known currency codes alphabetically.
func (s *Service) Codes(ctx context.Context) ([]string, error) {
	snap, err := s.repo.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Codes(), nil
}

// Conversion is one converted request together with the date of the
// snapshot it was computed from.
type Conversion struct {
	Request     ConversionRequest
	Formatted   string
	PublishedOn time.Time
}

// ConvertString converts a request such as "42.23 EUR in USD" and formats
// the result with precision fractional digits. With addCurrency the target
// code is appended after a single space.
func (s *Service) ConvertString(ctx context.Context, text string, precision int, addCurrency bool) (string, error) {
	c, err := s.Convert(ctx, text, precision, addCurrency)
	if err != nil {
		return "", err
	}
	return c.Formatted, nil
}

// Convert is ConvertString that also reports which snapshot was used.
func (s *Service) Convert(ctx context.Context, text string, precision int, addCurrency bool) (Conversion, error) {
	c, err := s.convert(ctx, text, precision, addCurrency)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ConversionsTotal.WithLabelValues(outcome).Inc()
	return c, err
}

func (s *Service) convert(ctx context.Context, text string, precision int, addCurrency bool) (Conversion, error) {
	req, err := ParseRequest(text)
	if err != nil {
		return Conversion{}, err
	}
	// Reject a bad precision before any rates are loaded.
	if err := CheckPrecision(precision); err != nil {
		return Conversion{}, err
	}
	snap, err := s.repo.Current(ctx)
	if err != nil {
		return Conversion{}, err
	}
	value, err := Convert(req.Amount, req.Source, req.Target, snap)
	if err != nil {
		return Conversion{}, err
	}
	formatted, err := FormatAmount(value, precision)
	if err != nil {
		return Conversion{}, err
	}
	if addCurrency {
		formatted += " " + req.Target
	}
	return Conversion{Request: req, Formatted: formatted, PublishedOn: snap.PublishedOn}, nil
}
