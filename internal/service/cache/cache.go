package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(prefix string) error
}

// ForecastKeyPrefix scopes cached forecasts of one product.
func ForecastKeyPrefix(product string) string {
	return "salescast:forecast:" + product + ":"
}
