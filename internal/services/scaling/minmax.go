package scaling

import (
	"encoding/json"
	"fmt"
	"os"

	domsvc "SalesCast/internal/domain/service"

	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler is a fitted per-column min/max scaler. Columns with a zero
// data range get a scale of 1 so they map to the lower feature bound.
type MinMaxScaler struct {
	dataMin []float64
	scale   []float64
	offset  []float64
}

// minMaxArtifact is the JSON form exported next to each trained model.
type minMaxArtifact struct {
	DataMin      []float64  `json:"data_min"`
	DataMax      []float64  `json:"data_max"`
	FeatureRange [2]float64 `json:"feature_range"`
}

// NewMinMaxScaler builds a scaler from fitted column bounds and a target range.
func NewMinMaxScaler(dataMin, dataMax []float64, lo, hi float64) (*MinMaxScaler, error) {
	if len(dataMin) == 0 || len(dataMin) != len(dataMax) {
		return nil, fmt.Errorf("scaler bounds mismatch: %d min vs %d max", len(dataMin), len(dataMax))
	}
	if floats.HasNaN(dataMin) || floats.HasNaN(dataMax) {
		return nil, fmt.Errorf("scaler bounds contain NaN")
	}
	if hi <= lo {
		return nil, fmt.Errorf("invalid feature range [%v, %v]", lo, hi)
	}
	s := &MinMaxScaler{
		dataMin: append([]float64(nil), dataMin...),
		scale:   make([]float64, len(dataMin)),
		offset:  make([]float64, len(dataMin)),
	}
	for i := range dataMin {
		rng := dataMax[i] - dataMin[i]
		if rng < 0 {
			return nil, fmt.Errorf("column %d: data_max < data_min", i)
		}
		if rng == 0 {
			rng = 1
		}
		s.scale[i] = (hi - lo) / rng
		s.offset[i] = lo - dataMin[i]*s.scale[i]
	}
	return s, nil
}

// ParseMinMaxScaler decodes a JSON scaler artifact.
func ParseMinMaxScaler(b []byte) (*MinMaxScaler, error) {
	a := minMaxArtifact{FeatureRange: [2]float64{0, 1}}
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	return NewMinMaxScaler(a.DataMin, a.DataMax, a.FeatureRange[0], a.FeatureRange[1])
}

// LoadMinMaxScaler reads a JSON scaler artifact from disk.
func LoadMinMaxScaler(path string) (*MinMaxScaler, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	s, err := ParseMinMaxScaler(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *MinMaxScaler) NumFeatures() int { return len(s.scale) }

func (s *MinMaxScaler) Transform(rows [][]float64) ([][]float64, error) {
	return s.apply(rows, func(i int, v float64) float64 { return v*s.scale[i] + s.offset[i] })
}

func (s *MinMaxScaler) InverseTransform(rows [][]float64) ([][]float64, error) {
	return s.apply(rows, func(i int, v float64) float64 { return (v - s.offset[i]) / s.scale[i] })
}

func (s *MinMaxScaler) apply(rows [][]float64, fn func(int, float64) float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for r, row := range rows {
		if len(row) != len(s.scale) {
			return nil, fmt.Errorf("row %d has %d columns, scaler expects %d", r, len(row), len(s.scale))
		}
		o := make([]float64, len(row))
		for i, v := range row {
			o[i] = fn(i, v)
		}
		out[r] = o
	}
	return out, nil
}

var _ domsvc.Scaler = (*MinMaxScaler)(nil)
