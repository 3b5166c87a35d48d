package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	"SalesCast/internal/service/cache"
	svcmetrics "SalesCast/internal/service/metrics"
	"SalesCast/internal/services/artifacts"
	"SalesCast/internal/services/features"
	"SalesCast/internal/services/forecast"
	applogger "SalesCast/pkg/logger"
	"SalesCast/pkg/util"

	"github.com/google/uuid"
)

// ForecastOptions are the pipeline knobs from the forecast config section.
type ForecastOptions struct {
	HistoryWeeks    int
	PadShortHistory bool
	MaxSteps        int
	CacheTTL        time.Duration
}

// ForecastUseCase runs the weekly forecast pipeline for one product:
// source -> weekly buckets -> scaling -> recursive engine -> projection.
type ForecastUseCase struct {
	registry  *artifacts.Registry
	source    domrepo.TransactionSource
	holidays  *features.HolidayCalendar
	engine    *forecast.Engine
	cache     cache.BytesCache
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	opts      ForecastOptions
	l         *applogger.Logger
	now       func() time.Time
}

func NewForecastUseCase(
	registry *artifacts.Registry,
	source domrepo.TransactionSource,
	holidays *features.HolidayCalendar,
	engine *forecast.Engine,
	c cache.BytesCache,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	opts ForecastOptions,
	l *applogger.Logger,
) *ForecastUseCase {
	if opts.HistoryWeeks <= 0 {
		opts.HistoryWeeks = 5
	}
	return &ForecastUseCase{
		registry:  registry,
		source:    source,
		holidays:  holidays,
		engine:    engine,
		cache:     c,
		publisher: publisher,
		metrics:   metrics,
		opts:      opts,
		l:         l,
		now:       time.Now,
	}
}

// SetClock overrides the wall clock used to derive the audit cutoff.
func (uc *ForecastUseCase) SetClock(now func() time.Time) { uc.now = now }

// Products lists the catalog in configured order.
func (uc *ForecastUseCase) Products() []models.Product { return uc.registry.Products() }

// Available reports whether a product has loaded model artifacts.
func (uc *ForecastUseCase) Available(name string) bool { return uc.registry.Available(name) }

// RunForecast predicts steps weeks of sales for product. The product is
// resolved before any store access, so unknown names never reach the source.
func (uc *ForecastUseCase) RunForecast(ctx context.Context, product string, steps int) (*models.ForecastResult, error) {
	start := time.Now()
	res, err := uc.run(ctx, product, steps)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("forecast", time.Since(start).Seconds())
		if err != nil {
			uc.metrics.RecordForecast(product, "error")
			uc.metrics.RecordError(errorKind(err))
		} else {
			uc.metrics.RecordForecast(product, "ok")
		}
	}
	return res, err
}

func (uc *ForecastUseCase) run(ctx context.Context, product string, steps int) (*models.ForecastResult, error) {
	bundle, err := uc.registry.Bundle(product)
	if err != nil {
		return nil, err
	}
	if steps < 1 || (uc.opts.MaxSteps > 0 && steps > uc.opts.MaxSteps) {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", models.ErrInvalidSteps, steps, uc.opts.MaxSteps)
	}

	cutoff := util.AuditCutoff(uc.now())
	key := cacheKey(product, steps, cutoff)
	if res, ok := uc.cached(key); ok {
		return res, nil
	}

	txs, err := uc.source.Query(ctx, product, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: %s up to %s", models.ErrEmptyHistory, product, util.FormatDate(cutoff))
	}

	size := uc.engine.Size()
	buckets := features.Aggregate(txs, size, cutoff, uc.holidays)
	if len(buckets) == 0 || !uc.opts.PadShortHistory {
		if err := features.CheckHistory(buckets, size); err != nil {
			return nil, err
		}
	}

	history := features.Aggregate(txs, uc.opts.HistoryWeeks, cutoff, uc.holidays)
	historical := make([]models.HistoricalPoint, 0, len(history))
	for _, b := range history {
		historical = append(historical, models.HistoricalPoint{
			Date:     b.WeekEnding,
			Quantity: b.Quantity,
			Revenue:  forecast.Revenue(b.Quantity, bundle.Product),
		})
	}

	window, err := bundle.Scaling.Forward(features.Rows(buckets))
	if err != nil {
		return nil, fmt.Errorf("scale window: %w", err)
	}
	dates := forecast.FutureDates(buckets[len(buckets)-1].WeekEnding, steps)
	future, err := bundle.Scaling.ForwardCalendar(features.FeaturesForDates(dates, uc.holidays))
	if err != nil {
		return nil, fmt.Errorf("scale calendar: %w", err)
	}

	normalized, err := uc.engine.Forecast(ctx, window, steps, future, bundle.Predictor)
	if err != nil {
		return nil, err
	}
	quantities, err := bundle.Scaling.InverseTarget(normalized)
	if err != nil {
		return nil, fmt.Errorf("inverse scale: %w", err)
	}

	points := make([]models.ForecastPoint, len(quantities))
	for i, q := range quantities {
		points[i] = forecast.Project(dates[i], q, bundle.Product)
	}

	res := &models.ForecastResult{
		RunID:        uuid.NewString(),
		Product:      product,
		Cutoff:       cutoff,
		WindowPolicy: string(uc.engine.Policy()),
		GeneratedAt:  uc.now().UTC(),
		Historical:   historical,
		Forecast:     points,
		Summary:      features.Summarize(historical),
	}
	if uc.metrics != nil && len(points) > 0 {
		uc.metrics.RecordLastForecast(product, float64(points[0].PredictedQuantity))
	}

	uc.store(key, res)
	uc.publish(ctx, res, steps)
	if uc.l != nil {
		uc.l.Debug("forecast generated",
			applogger.String("product", product),
			applogger.String("run_id", res.RunID),
			applogger.Int("steps", steps),
			applogger.Int("buckets", len(buckets)),
			applogger.Bool("padded", len(buckets) < size),
			applogger.Float64("first_step_raw", quantities[0]),
		)
	}
	return res, nil
}

func (uc *ForecastUseCase) cached(key string) (*models.ForecastResult, bool) {
	if uc.cache == nil {
		return nil, false
	}
	b, ok, err := uc.cache.GetBytes(key)
	if err != nil {
		uc.warn("forecast cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	if !ok {
		svcmetrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	var res models.ForecastResult
	if err := json.Unmarshal(b, &res); err != nil {
		uc.warn("forecast cache entry corrupt", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	svcmetrics.CacheLookups.WithLabelValues("hit").Inc()
	return &res, true
}

func (uc *ForecastUseCase) store(key string, res *models.ForecastResult) {
	if uc.cache == nil || uc.opts.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(res)
	if err == nil {
		err = uc.cache.SetBytes(key, b, uc.opts.CacheTTL)
	}
	if err != nil {
		uc.warn("forecast cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// publish emits forecast.generated. Failures are logged; the caller already has its result.
func (uc *ForecastUseCase) publish(ctx context.Context, res *models.ForecastResult, steps int) {
	if uc.publisher == nil {
		return
	}
	ev := &models.ForecastGeneratedEvent{
		RunID:       res.RunID,
		Product:     res.Product,
		Steps:       steps,
		Cutoff:      res.Cutoff,
		GeneratedAt: res.GeneratedAt,
		Forecast:    make([]models.ForecastEventPoint, 0, len(res.Forecast)),
	}
	for _, p := range res.Forecast {
		ev.Forecast = append(ev.Forecast, models.ForecastEventPoint{
			Date:     util.FormatDate(p.Date),
			Quantity: p.PredictedQuantity,
			Revenue:  p.PredictedRevenue,
		})
	}
	if err := uc.publisher.PublishForecast(ctx, ev); err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("publish_forecast")
		}
		uc.warn("publish forecast event failed",
			applogger.String("product", res.Product),
			applogger.String("run_id", res.RunID),
			applogger.Error(err),
		)
	}
}

func (uc *ForecastUseCase) warn(msg string, fields ...applogger.Field) {
	if uc.l != nil {
		uc.l.Warn(msg, fields...)
	}
}

func cacheKey(product string, steps int, cutoff time.Time) string {
	return cache.ForecastKeyPrefix(product) + strconv.Itoa(steps) + ":" + util.FormatDate(cutoff)
}

func errorKind(err error) string {
	var insufficient *models.InsufficientHistoryError
	var predictor *models.PredictorError
	switch {
	case errors.Is(err, models.ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, models.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, models.ErrInvalidSteps):
		return "invalid_steps"
	case errors.Is(err, models.ErrEmptyHistory):
		return "empty_history"
	case errors.As(err, &insufficient):
		return "insufficient_history"
	case errors.As(err, &predictor):
		return "predictor"
	default:
		return "internal"
	}
}
