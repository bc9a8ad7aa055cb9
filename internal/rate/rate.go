package rate

import (
	"errors"
	"fmt"
	"time"
)

// BaseCurrency is the currency every stored rate is expressed against. It is
// never listed as an entry of a Snapshot.
const BaseCurrency = "EUR"

const cacheKeyFormat = "2006-01-02"

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrTransport         = errors.New("transport failure")
	ErrInvalidArguments  = errors.New("invalid arguments")
)

// CurrencyNotFoundError reports a currency code missing from the current snapshot.
type CurrencyNotFoundError struct {
	Code string
}

func (e *CurrencyNotFoundError) Error() string {
	return fmt.Sprintf("currency %s not found in snapshot", e.Code)
}

// Rate is the number of units of Currency per one unit of BaseCurrency.
type Rate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

type Snapshot struct {
	Rates     []Rate    `json:"rates"`
	Timestamp time.Time `json:"timestamp"`
}

// Lookup returns the base-relative rate for code.
func (s Snapshot) Lookup(code string) (float64, error) {
	for _, r := range s.Rates {
		if r.Currency == code {
			return r.Rate, nil
		}
	}
	return 0, &CurrencyNotFoundError{Code: code}
}

// CachedRecord is a snapshot as persisted under a cache key.
type CachedRecord struct {
	Snapshot       Snapshot
	FetchTimestamp time.Time
	CacheKey       string
	Metadata       map[string]string
}

func NewCachedRecord(snapshot Snapshot, fetchedAt time.Time, key string) CachedRecord {
	return CachedRecord{
		Snapshot:       snapshot,
		FetchTimestamp: fetchedAt.UTC(),
		CacheKey:       key,
		Metadata:       make(map[string]string),
	}
}

// CacheKey returns the UTC calendar date of t, the key under which the daily
// snapshot is stored.
func CacheKey(t time.Time) string {
	return t.UTC().Format(cacheKeyFormat)
}

type ConversionRequest struct {
	From   string  `json:"from" validate:"required"`
	Amount float64 `json:"amount"`
	To     string  `json:"to" validate:"required"`
}

type Conversion struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Rate            float64 `json:"rate"`
	Amount          float64 `json:"amount"`
	ConvertedAmount float64 `json:"convertedAmount"`
}
