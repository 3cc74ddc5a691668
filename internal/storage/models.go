package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seblin/curpy/internal/rates"
)

// cacheFile is the on-disk shape of a snapshot:
//
//	{"rates": {"EUR": 1, "USD": 1.0867}, "date": "2024-05-17"}
//
// Rates are plain JSON numbers. They are decoded as json.Number and parsed
// from their text so no binary float ever sits between file and decimal.
type cacheFile struct {
	Rates map[string]json.Number `json:"rates"`
	Date  string                 `json:"date"`
}

// RatesSnapshot is the SQL row for a stored snapshot. Payload holds the
// same JSON document the file backend writes.
type RatesSnapshot struct {
	ID          uint      `json:"-" gorm:"primaryKey;column:id"`
	PublishedOn string    `json:"published_on" gorm:"column:published_on;uniqueIndex"`
	Payload     []byte    `json:"payload" gorm:"column:payload"`
	FetchedAt   time.Time `json:"fetched_at" gorm:"column:fetched_at"`
}

func (RatesSnapshot) TableName() string { return "rate_snapshots" }

// EncodeSnapshot renders snap in the cache document format.
func EncodeSnapshot(snap rates.Snapshot) ([]byte, error) {
	doc := cacheFile{
		Rates: make(map[string]json.Number, len(snap.Rates)),
		Date:  snap.PublishedOn.Format(rates.DateLayout),
	}
	for code, rate := range snap.Rates {
		doc.Rates[code] = json.Number(rate.String())
	}
	return json.Marshal(doc)
}

// DecodeSnapshot parses a cache document. Unknown fields are ignored.
// Every failure wraps rates.ErrCacheRead.
func DecodeSnapshot(data []byte) (rates.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc cacheFile
	if err := dec.Decode(&doc); err != nil {
		return rates.Snapshot{}, fmt.Errorf("%w: %v", rates.ErrCacheRead, err)
	}
	if doc.Date == "" {
		return rates.Snapshot{}, fmt.Errorf("%w: missing date", rates.ErrCacheRead)
	}
	published, err := rates.ParseDate(doc.Date)
	if err != nil {
		return rates.Snapshot{}, fmt.Errorf("%w: bad date %q", rates.ErrCacheRead, doc.Date)
	}
	if len(doc.Rates) == 0 {
		return rates.Snapshot{}, fmt.Errorf("%w: no rates", rates.ErrCacheRead)
	}

	values := make(map[string]decimal.Decimal, len(doc.Rates))
	for code, num := range doc.Rates {
		d, err := decimal.NewFromString(num.String())
		if err != nil {
			return rates.Snapshot{}, fmt.Errorf("%w: bad rate %q for %s", rates.ErrCacheRead, num, code)
		}
		values[code] = d
	}

	snap, err := rates.NewSnapshot(published, values)
	if err != nil {
		return rates.Snapshot{}, fmt.Errorf("%w: %v", rates.ErrCacheRead, err)
	}
	return snap, nil
}
