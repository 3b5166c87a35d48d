package models

// Requests and response payloads for the forecast HTTP endpoints.
// JSON names stay compatible with the existing dashboard.

// ForecastRequest leaves the steps range to the usecase, which knows
// forecast.max_steps. Only an absent forecast_steps defaults to 1.
type ForecastRequest struct {
	ProductName   string `query:"product" json:"product_name" validate:"required"`
	ForecastSteps *int   `query:"-" json:"forecast_steps" default:"1"`
}

func (r *ForecastRequest) Steps() int {
	if r.ForecastSteps == nil {
		return 1
	}
	return *r.ForecastSteps
}

type HistoricalDataItem struct {
	Date     string  `json:"tanggal"`
	Quantity float64 `json:"jumlah"`
	Revenue  int64   `json:"pendapatan"`
}

type ForecastDataItem struct {
	AuditDate         string `json:"tanggal_audit"`
	Product           string `json:"produk"`
	PredictedQuantity int64  `json:"prediksi_jumlah_terjual"`
	PredictedRevenue  int64  `json:"prediksi_pendapatan"`
}

type SummaryItem struct {
	Weeks          int     `json:"weeks"`
	TotalQuantity  float64 `json:"total_quantity"`
	MeanQuantity   float64 `json:"mean_quantity"`
	StdDevQuantity float64 `json:"stddev_quantity"`
	TotalRevenue   int64   `json:"total_revenue"`
}

type ForecastResponse struct {
	RunID          string               `json:"run_id"`
	Product        string               `json:"product"`
	Cutoff         string               `json:"cutoff"`
	WindowPolicy   string               `json:"window_policy"`
	HistoricalData []HistoricalDataItem `json:"historical_data"`
	ForecastData   []ForecastDataItem   `json:"forecast_data"`
	Summary        SummaryItem          `json:"summary"`
}

type ProductItem struct {
	Name           string `json:"name"`
	UnitPrice      string `json:"unit_price"`
	ModelAvailable bool   `json:"model_available"`
}
