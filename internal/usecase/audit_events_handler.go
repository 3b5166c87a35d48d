package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	"SalesCast/internal/service/cache"
	applogger "SalesCast/pkg/logger"
	pkgkafka "SalesCast/pkg/kafka"
)

// AuditEventsHandler drops cached forecasts when the bookkeeping system
// reports changed audit rows for a product.
type AuditEventsHandler struct {
	topic   string
	cache   cache.BytesCache
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewAuditEventsHandler(topic string, c cache.BytesCache, metrics domrepo.Metrics, l *applogger.Logger) *AuditEventsHandler {
	return &AuditEventsHandler{topic: topic, cache: c, metrics: metrics, l: l}
}

func (h *AuditEventsHandler) Topic() string { return h.topic }

// Handle expects {"product": ..., "type": ..., "date": ...}. Only sale rows
// (or events without a type) affect forecasts.
func (h *AuditEventsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.AuditChangeEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.recordError("consumer_unmarshal")
		return err
	}
	if ev.Product == "" {
		h.recordError("consumer_invalid")
		return fmt.Errorf("audit event without product")
	}
	if ev.Type != "" && ev.Type != models.SaleTransactionType {
		return nil
	}
	if h.cache == nil {
		return nil
	}
	if err := h.cache.DeletePrefix(cache.ForecastKeyPrefix(ev.Product)); err != nil {
		h.recordError("cache_invalidate")
		return fmt.Errorf("invalidate %q: %w", ev.Product, err)
	}
	if h.l != nil {
		h.l.Debug("forecast cache invalidated", applogger.String("product", ev.Product))
	}
	return nil
}

func (h *AuditEventsHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*AuditEventsHandler)(nil)
