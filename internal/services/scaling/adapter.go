package scaling

import (
	"fmt"

	"SalesCast/internal/domain/models"
	domsvc "SalesCast/internal/domain/service"
)

const calendarColumns = 2

// Adapter applies a product's fitted scalers: the full feature scaler for
// history rows and the target column, the calendar scaler for future indicators.
type Adapter struct {
	features domsvc.Scaler
	calendar domsvc.Scaler
}

func NewAdapter(features, calendar domsvc.Scaler) (*Adapter, error) {
	if features == nil || calendar == nil {
		return nil, fmt.Errorf("scalers are required")
	}
	if n := features.NumFeatures(); n != models.FeatureCount {
		return nil, fmt.Errorf("feature scaler has %d columns, want %d", n, models.FeatureCount)
	}
	if n := calendar.NumFeatures(); n != calendarColumns {
		return nil, fmt.Errorf("calendar scaler has %d columns, want %d", n, calendarColumns)
	}
	return &Adapter{features: features, calendar: calendar}, nil
}

// Forward normalizes [quantity, prior, payday, holiday] rows.
func (a *Adapter) Forward(rows [][]float64) ([][]float64, error) {
	return a.features.Transform(rows)
}

// InverseTarget maps normalized quantities back to real units. Values are
// placed in column 0 of a zero matrix as wide as the feature scaler, inverted,
// and column 0 is read back.
func (a *Adapter) InverseTarget(values []float64) ([]float64, error) {
	width := a.features.NumFeatures()
	padded := make([][]float64, len(values))
	for i, v := range values {
		row := make([]float64, width)
		row[0] = v
		padded[i] = row
	}
	inv, err := a.features.InverseTransform(padded)
	if err != nil {
		return nil, fmt.Errorf("inverse target: %w", err)
	}
	out := make([]float64, len(inv))
	for i, row := range inv {
		out[i] = row[0]
	}
	return out, nil
}

// ForwardCalendar normalizes future [payday, holiday] rows.
func (a *Adapter) ForwardCalendar(feats []models.CalendarFeatures) ([][]float64, error) {
	rows := make([][]float64, len(feats))
	for i, f := range feats {
		rows[i] = f.Row()
	}
	out, err := a.calendar.Transform(rows)
	if err != nil {
		return nil, fmt.Errorf("forward calendar: %w", err)
	}
	return out, nil
}
