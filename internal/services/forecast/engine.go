package forecast

import (
	"context"
	"fmt"
	"math"

	"SalesCast/internal/domain/models"
	domsvc "SalesCast/internal/domain/service"
)

// WindowPolicy controls how the feature window advances between steps.
type WindowPolicy string

const (
	// PolicyFixed evicts the oldest row so every call sees exactly size rows.
	PolicyFixed WindowPolicy = "fixed"
	// PolicyGrowing only appends; step k sees size+k rows.
	PolicyGrowing WindowPolicy = "growing"
)

func ParseWindowPolicy(s string) (WindowPolicy, error) {
	switch WindowPolicy(s) {
	case PolicyFixed, "":
		return PolicyFixed, nil
	case PolicyGrowing:
		return PolicyGrowing, nil
	default:
		return "", fmt.Errorf("unknown window policy %q", s)
	}
}

// Engine runs recursive multi-step forecasts over normalized feature windows.
type Engine struct {
	size   int
	policy WindowPolicy
}

func NewEngine(size int, policy WindowPolicy) (*Engine, error) {
	if size < 1 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	if _, err := ParseWindowPolicy(string(policy)); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicyFixed
	}
	return &Engine{size: size, policy: policy}, nil
}

func (e *Engine) Size() int { return e.size }

func (e *Engine) Policy() WindowPolicy { return e.policy }

// Forecast predicts horizon steps. Each step feeds the new row
// [prediction, previous last quantity, future calendar...] back into the window.
// A window shorter than the engine size is front-padded with zero rows; a longer
// one is trimmed to its most recent rows. The first predictor failure aborts the
// run with a *models.PredictorError and no partial output.
func (e *Engine) Forecast(ctx context.Context, window [][]float64, horizon int, future [][]float64, p domsvc.Predictor) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if len(window) == 0 {
		return nil, fmt.Errorf("empty feature window")
	}
	if len(future) < horizon {
		return nil, fmt.Errorf("need %d future calendar rows, got %d", horizon, len(future))
	}
	width := len(window[0])
	for i, row := range window {
		if len(row) != width {
			return nil, fmt.Errorf("window row %d has %d columns, want %d", i, len(row), width)
		}
	}

	cur := e.initialWindow(window, width)
	out := make([]float64, 0, horizon)
	for step := 0; step < horizon; step++ {
		pred, err := p.Predict(ctx, cur)
		if err != nil {
			return nil, &models.PredictorError{Step: step, Err: err}
		}
		if math.IsNaN(pred) || math.IsInf(pred, 0) {
			return nil, &models.PredictorError{Step: step, Err: fmt.Errorf("non-finite prediction %v", pred)}
		}
		out = append(out, pred)

		next := make([]float64, 0, width)
		next = append(next, pred, cur[len(cur)-1][0])
		next = append(next, future[step]...)
		if len(next) != width {
			return nil, fmt.Errorf("future row %d yields %d columns, want %d", step, len(next), width)
		}
		cur = e.advance(cur, next)
	}
	return out, nil
}

func (e *Engine) initialWindow(window [][]float64, width int) [][]float64 {
	if len(window) > e.size {
		window = window[len(window)-e.size:]
	}
	cur := make([][]float64, 0, e.size+1)
	for i := len(window); i < e.size; i++ {
		cur = append(cur, make([]float64, width))
	}
	for _, row := range window {
		cur = append(cur, append([]float64(nil), row...))
	}
	return cur
}

func (e *Engine) advance(cur [][]float64, next []float64) [][]float64 {
	if e.policy == PolicyGrowing {
		return append(cur, next)
	}
	shifted := make([][]float64, 0, e.size)
	shifted = append(shifted, cur[1:]...)
	return append(shifted, next)
}
