package api

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "SalesCast/internal/domain/models"
    "SalesCast/internal/service/metrics"
    "SalesCast/internal/service/ratelimit"
    xhttp "SalesCast/pkg/http"
    xlogger "SalesCast/pkg/logger"
    "SalesCast/pkg/util"

    "github.com/labstack/echo/v4"
)

// ForecastService is what the HTTP layer needs from the forecast usecase.
type ForecastService interface {
    RunForecast(ctx context.Context, product string, steps int) (*models.ForecastResult, error)
    Products() []models.Product
    Available(name string) bool
}

// ForecastEchoHandler serves the forecast dashboard API.
type ForecastEchoHandler struct {
    logger *xlogger.Logger
    svc    ForecastService
    rl     *ratelimit.Limiter
}

func NewForecastEchoHandler(logger *xlogger.Logger, svc ForecastService) *ForecastEchoHandler {
    metrics.Register()
    return &ForecastEchoHandler{logger: logger, svc: svc}
}

// SetRateLimiter enables per-IP limiting on the forecast routes.
func (h *ForecastEchoHandler) SetRateLimiter(rl *ratelimit.Limiter) { h.rl = rl }

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
    var mw []echo.MiddlewareFunc
    if h.rl != nil {
        mw = append(mw, h.rl.Middleware())
    }
    e.GET("/health", h.Health)
    e.POST("/predict", h.Forecast, mw...)

    g := e.Group("/api")
    g.GET("/products", h.Products)
    g.GET("/forecast", h.Forecast, mw...)
    g.POST("/forecast", h.Forecast, mw...)
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
    available := 0
    for _, p := range h.svc.Products() {
        if h.svc.Available(p.Name) {
            available++
        }
    }
    return xhttp.SuccessResponse(c, map[string]interface{}{
        "status":           "ok",
        "models_available": available,
    })
}

func (h *ForecastEchoHandler) Products(c echo.Context) error {
    products := h.svc.Products()
    items := make([]models.ProductItem, 0, len(products))
    for _, p := range products {
        items = append(items, models.ProductItem{
            Name:           p.Name,
            UnitPrice:      p.UnitPrice.String(),
            ModelAvailable: h.svc.Available(p.Name),
        })
    }
    return xhttp.ListResponse(c, items, int64(len(items)))
}

// Forecast accepts {product_name, forecast_steps} as a JSON body or
// ?product=&steps= on GET.
func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
    start := time.Now()
    defer func() { metrics.EndpointLatency.WithLabelValues("forecast").Observe(time.Since(start).Seconds()) }()

    req := &models.ForecastRequest{}
    verr := xhttp.ReadAndValidateRequest(c, req)
    if verr == nil && c.Request().Method == http.MethodGet {
        verr = bindStepsQuery(c, req)
    }
    if verr != nil {
        metrics.EndpointErrors.WithLabelValues("forecast", "ERR_BAD_REQUEST").Inc()
        return xhttp.BadRequestResponse(c, verr)
    }

    res, err := h.svc.RunForecast(c.Request().Context(), req.ProductName, req.Steps())
    if err != nil {
        appErr := toAppError(err)
        metrics.EndpointErrors.WithLabelValues("forecast", appErr.Code).Inc()
        if appErr.Status >= http.StatusInternalServerError {
            h.logger.Error("forecast usecase error",
                xlogger.String("product", req.ProductName),
                xlogger.Int("steps", req.Steps()),
                xlogger.Error(err),
            )
        } else {
            h.logger.Warn("forecast rejected",
                xlogger.String("product", req.ProductName),
                xlogger.String("code", appErr.Code),
            )
        }
        return xhttp.AppErrorResponse(c, appErr)
    }
    return xhttp.SuccessResponse(c, toResponse(res))
}

// bindStepsQuery reads ?steps= so an explicit value, zero included, reaches
// the usecase untouched.
func bindStepsQuery(c echo.Context, req *models.ForecastRequest) []xhttp.ValidationError {
    raw := c.QueryParam("steps")
    if raw == "" {
        return nil
    }
    n, err := strconv.Atoi(raw)
    if err != nil {
        return []xhttp.ValidationError{{Code: "ERR_MALFORMED", Field: "forecast_steps", Message: "steps must be an integer"}}
    }
    req.ForecastSteps = &n
    return nil
}

func toAppError(err error) *xhttp.AppError {
    var insufficient *models.InsufficientHistoryError
    var predictor *models.PredictorError
    switch {
    case errors.Is(err, models.ErrUnknownProduct):
        return xhttp.NotFoundError("ERR_UNKNOWN_PRODUCT", "product_name", "product not found")
    case errors.Is(err, models.ErrModelUnavailable):
        return xhttp.UnavailableError("ERR_MODEL_UNAVAILABLE", "product_name", "model for product is not available")
    case errors.Is(err, models.ErrInvalidSteps):
        return xhttp.BadRequestError("ERR_INVALID_STEPS", "forecast_steps", err.Error())
    case errors.Is(err, models.ErrEmptyHistory):
        return xhttp.UnprocessableError("ERR_EMPTY_HISTORY", "no sales history for product")
    case errors.As(err, &insufficient):
        return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", insufficient.Error()).
            WithParam("found", insufficient.Found).
            WithParam("needed", insufficient.Needed)
    case errors.As(err, &predictor):
        return xhttp.BadGatewayError("ERR_PREDICTOR", "model server call failed").
            WithParam("step", predictor.Step).
            WithError(err)
    default:
        return xhttp.InternalError("forecast failed").WithError(err)
    }
}

func toResponse(res *models.ForecastResult) *models.ForecastResponse {
    out := &models.ForecastResponse{
        RunID:          res.RunID,
        Product:        res.Product,
        Cutoff:         util.FormatDate(res.Cutoff),
        WindowPolicy:   res.WindowPolicy,
        HistoricalData: make([]models.HistoricalDataItem, 0, len(res.Historical)),
        ForecastData:   make([]models.ForecastDataItem, 0, len(res.Forecast)),
        Summary: models.SummaryItem{
            Weeks:          res.Summary.Weeks,
            TotalQuantity:  res.Summary.TotalQuantity,
            MeanQuantity:   res.Summary.MeanQuantity,
            StdDevQuantity: res.Summary.StdDevQuantity,
            TotalRevenue:   res.Summary.TotalRevenue,
        },
    }
    for _, p := range res.Historical {
        out.HistoricalData = append(out.HistoricalData, models.HistoricalDataItem{
            Date:     util.FormatDate(p.Date),
            Quantity: p.Quantity,
            Revenue:  p.Revenue,
        })
    }
    for _, p := range res.Forecast {
        out.ForecastData = append(out.ForecastData, models.ForecastDataItem{
            AuditDate:         util.FormatDate(p.Date),
            Product:           p.Product,
            PredictedQuantity: p.PredictedQuantity,
            PredictedRevenue:  p.PredictedRevenue,
        })
    }
    return out
}
