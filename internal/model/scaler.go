package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

var ErrDimensionMismatch = errors.New("dimension mismatch")

// Scaler standardizes features to zero mean and unit variance using the
// population standard deviation of the training data.
type Scaler struct {
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	SamplesSeen  int       `json:"n_samples_seen"`
}

// FitScaler computes per-column mean and standard deviation over rows.
// A constant column keeps a scale of 1.
func FitScaler(rows [][]float64, names []string) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fit scaler: no rows")
	}
	dim := len(names)
	if dim == 0 {
		return nil, fmt.Errorf("fit scaler: no features")
	}

	s := &Scaler{
		FeatureNames: append([]string(nil), names...),
		Mean:         make([]float64, dim),
		Scale:        make([]float64, dim),
		SamplesSeen:  len(rows),
	}

	col := make([]float64, len(rows))
	for j := 0; j < dim; j++ {
		for i, row := range rows {
			if len(row) != dim {
				return nil, fmt.Errorf("fit scaler: row %d has %d values, want %d: %w", i, len(row), dim, ErrDimensionMismatch)
			}
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		if std == 0 {
			std = 1
		}
		s.Scale[j] = std
	}
	return s, nil
}

// Dim is the number of features the scaler was fitted on.
func (s *Scaler) Dim() int {
	return len(s.Mean)
}

// Transform returns (x - mean) / scale for one vector.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("transform: got %d values, want %d: %w", len(x), len(s.Mean), ErrDimensionMismatch)
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// TransformAll scales every row.
func (s *Scaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
