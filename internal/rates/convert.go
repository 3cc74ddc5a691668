package rates

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of fractional digits kept when normalizing an
// amount into pivot units.
const DivisionScale = 28

var requestPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+([A-Z]{3})\s+IN\s+([A-Z]{3})$`)

// ConversionRequest is one parsed "<amount> <CODE> IN <CODE>" line.
type ConversionRequest struct {
	Amount decimal.Decimal
	Source string
	Target string
}

// ParseRequest parses text such as "42.23 eur in usd". Matching is done on
// the trimmed, upper-cased input. Only the shape of the codes is checked;
// membership is checked by Convert.
func ParseRequest(text string) (ConversionRequest, error) {
	m := requestPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(text)))
	if m == nil {
		return ConversionRequest{}, fmt.Errorf("%w: %q", ErrMalformedRequest, text)
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return ConversionRequest{}, fmt.Errorf("%w: %q", ErrMalformedRequest, text)
	}
	return ConversionRequest{Amount: amount, Source: m[2], Target: m[3]}, nil
}

// Convert converts amount from source to target using snap. Conversions
// out of the pivot are a single exact multiplication; anything else divides
// once by the source rate, rounded to DivisionScale digits.
func Convert(amount decimal.Decimal, source, target string, snap Snapshot) (decimal.Decimal, error) {
	sourceRate, ok := snap.Rate(source)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, source)
	}
	targetRate, ok := snap.Rate(target)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, target)
	}
	if source == Pivot {
		return amount.Mul(targetRate), nil
	}
	pivotAmount := amount.DivRound(sourceRate, DivisionScale)
	if target == Pivot {
		return pivotAmount, nil
	}
	return pivotAmount.Mul(targetRate), nil
}

// MaxPrecision is the largest precision FormatAmount accepts; decimal
// scales are int32.
const MaxPrecision = math.MaxInt32

// FormatAmount rounds value half away from zero to precision fractional
// digits and renders exactly that many digits.
func FormatAmount(value decimal.Decimal, precision int) (string, error) {
	if err := CheckPrecision(precision); err != nil {
		return "", err
	}
	return value.StringFixed(int32(precision)), nil
}

// CheckPrecision reports whether FormatAmount accepts precision.
func CheckPrecision(precision int) error {
	if precision < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidPrecision, precision)
	}
	if precision > MaxPrecision {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidPrecision, precision, MaxPrecision)
	}
	return nil
}
