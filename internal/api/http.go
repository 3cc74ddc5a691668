package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seblin/curpy/internal/metrics"
	"github.com/seblin/curpy/internal/rates"
	"github.com/seblin/curpy/internal/storage"
)

// ConvertResponse is returned by GET /convert.
type ConvertResponse struct {
	Query       string `json:"query"`
	Result      string `json:"result"`
	Precision   int    `json:"precision"`
	PublishedOn string `json:"published_on"`
}

// maxPrecision bounds the precision query parameter; result strings grow
// with it.
const maxPrecision = 64

type errorResponse struct {
	Error string `json:"error"`
}

// NewMux constructs the HTTP handler around svc. st is only used for
// readiness checks.
func NewMux(svc *rates.Service, st storage.Storage, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	// Metrics endpoint.
	mux.Handle("/metrics", promhttp.Handler())

	// Health / readiness / liveness.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if st != nil {
			if err := st.Ping(r.Context()); err != nil {
				logger.Warn("readyz: storage ping failed", "error", err)
				http.Error(w, "storage not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/convert", instrument("/convert", handleConvert(svc, logger)))
	mux.HandleFunc("/currencies", instrument("/currencies", handleCurrencies(svc, logger)))
	mux.HandleFunc("/snapshot", instrument("/snapshot", handleSnapshot(svc, logger)))
	RegisterRefreshHandler(mux, svc, logger)

	return WithRequestID(logger, mux)
}

// statusRecorder captures the status code for error metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		metrics.RequestsTotal.WithLabelValues(path).Inc()

		next(rec, r)

		metrics.RequestDurationSeconds.WithLabelValues(path).Observe(time.Since(start).Seconds())
		if rec.status >= 400 {
			metrics.RequestErrorsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		}
	}
}

// statusFor maps caller mistakes to 400 and everything else (no rates
// available at all) to 503.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rates.ErrMalformedRequest),
		errors.Is(err, rates.ErrUnknownCurrency),
		errors.Is(err, rates.ErrInvalidPrecision):
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func handleConvert(svc *rates.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		query := q.Get("q")

		precision := 2
		if raw := q.Get("precision"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", rates.ErrInvalidPrecision, raw))
				return
			}
			if p > maxPrecision {
				writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %d exceeds %d", rates.ErrInvalidPrecision, p, maxPrecision))
				return
			}
			precision = p
		}
		addCurrency := false
		if raw := q.Get("add_currency"); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid add_currency %q", raw))
				return
			}
			addCurrency = b
		}

		c, err := svc.Convert(r.Context(), query, precision, addCurrency)
		if err != nil {
			status := statusFor(err)
			if status >= 500 {
				logger.Error("convert failed", "request_id", RequestID(r.Context()), "error", err)
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusOK, ConvertResponse{
			Query:       query,
			Result:      c.Formatted,
			Precision:   precision,
			PublishedOn: c.PublishedOn.Format(rates.DateLayout),
		})
	}
}

func handleCurrencies(svc *rates.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		codes, err := svc.Codes(r.Context())
		if err != nil {
			logger.Error("list currencies failed", "request_id", RequestID(r.Context()), "error", err)
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Codes []string `json:"codes"`
		}{Codes: codes})
	}
}

// handleSnapshot serves the active snapshot in the cache document format.
func handleSnapshot(svc *rates.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap, err := svc.Snapshot(r.Context())
		if err != nil {
			logger.Error("load snapshot failed", "request_id", RequestID(r.Context()), "error", err)
			writeError(w, statusFor(err), err)
			return
		}
		body, err := storage.EncodeSnapshot(snap)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}
