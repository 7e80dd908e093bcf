package scoring

import (
	"fmt"
	"math"

	"github.com/matchminds/backend/internal/model"
	"gonum.org/v1/gonum/floats"
)

const (
	individualWeight = 0.6
	centroidWeight   = 0.4
)

// BuildVector lays scores out in schema order. A feature the record lacks
// becomes 0; no error is raised.
func BuildVector(scores map[string]float64, schema []string) []float64 {
	v := make([]float64, len(schema))
	for i, feature := range schema {
		v[i] = scores[feature]
	}
	return v
}

// MissingFeatures lists the schema features BuildVector would default to 0.
func MissingFeatures(scores map[string]float64, schema []string) []string {
	var missing []string
	for _, feature := range schema {
		if _, ok := scores[feature]; !ok {
			missing = append(missing, feature)
		}
	}
	return missing
}

// ScaleAndCluster applies the persisted scaler, then assigns the nearest
// centroid.
func ScaleAndCluster(vector []float64, scaler *model.Scaler, km *model.KMeans) ([]float64, int, error) {
	scaled, err := scaler.Transform(vector)
	if err != nil {
		return nil, 0, fmt.Errorf("scale: %w", err)
	}
	cluster, err := km.Predict(scaled)
	if err != nil {
		return nil, 0, fmt.Errorf("cluster: %w", err)
	}
	return scaled, cluster, nil
}

// Result breaks a compatibility score into its parts.
type Result struct {
	Individual float64
	Centroid   float64
	Percentage float64
}

// Compatibility blends the cosine similarity of the two scaled vectors with
// that of their cluster centroids and returns the percentage rounded to two
// decimals.
func Compatibility(v1, v2 []float64, c1, c2 int, km *model.KMeans) (Result, error) {
	if len(v1) != len(v2) {
		return Result{}, fmt.Errorf("compatibility: vectors have %d and %d values: %w", len(v1), len(v2), model.ErrDimensionMismatch)
	}
	cent1, err := km.Centroid(c1)
	if err != nil {
		return Result{}, err
	}
	cent2, err := km.Centroid(c2)
	if err != nil {
		return Result{}, err
	}

	individual := CosineSimilarity(v1, v2)
	centroid := CosineSimilarity(cent1, cent2)
	score := individualWeight*individual + centroidWeight*centroid

	return Result{
		Individual: individual,
		Centroid:   centroid,
		Percentage: round2(score * 100),
	}, nil
}

// ComputeCompatibility returns only the percentage of Compatibility.
func ComputeCompatibility(v1, v2 []float64, c1, c2 int, km *model.KMeans) (float64, error) {
	r, err := Compatibility(v1, v2, c1, c2, km)
	if err != nil {
		return 0, err
	}
	return r.Percentage, nil
}

// CosineSimilarity is 0 when either vector has zero norm or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
