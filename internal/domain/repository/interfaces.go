package repository

import (
	"context"
	"time"

	"SalesCast/internal/domain/models"
)

// TransactionSource returns sale-type audit records for one product with
// date <= upTo, ascending by date. Implementations apply the sale filter.
type TransactionSource interface {
	Query(ctx context.Context, product string, upTo time.Time) ([]models.TransactionRecord, error)
}

type EventPublisher interface {
	PublishForecast(ctx context.Context, ev *models.ForecastGeneratedEvent) error
	Close() error
}

type Metrics interface {
	RecordForecast(product, result string)
	RecordError(kind string)
	RecordLastForecast(product string, quantity float64)
	RecordLatency(op string, seconds float64)
}
