package rates

import "errors"

// Error kinds. Operations wrap these with the offending value, so callers
// match them with errors.Is and print err.Error() as a one-line diagnostic.
var (
	// ErrSourceUnavailable is a network-level failure talking to the feed.
	ErrSourceUnavailable = errors.New("rate source unavailable")
	// ErrSourceFormat means the feed answered but could not be parsed.
	ErrSourceFormat = errors.New("malformed rate feed")
	// ErrCacheRead means a persisted snapshot exists but is unreadable.
	ErrCacheRead = errors.New("unreadable rate cache")
	// ErrMalformedRequest means a conversion request does not match the grammar.
	ErrMalformedRequest = errors.New("invalid string format")
	// ErrUnknownCurrency means a code is absent from the active snapshot.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrInvalidPrecision is returned for a negative or unrepresentable
	// formatting precision.
	ErrInvalidPrecision = errors.New("invalid precision")
)
