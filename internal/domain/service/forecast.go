package service

import "context"

// Predictor maps a window of normalized feature rows to one normalized quantity.
type Predictor interface {
	Predict(ctx context.Context, window [][]float64) (float64, error)
}

// Scaler is a fitted column-wise transform. Rows must have NumFeatures columns.
type Scaler interface {
	Transform(rows [][]float64) ([][]float64, error)
	InverseTransform(rows [][]float64) ([][]float64, error)
	NumFeatures() int
}
