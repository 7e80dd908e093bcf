package model

import (
	"errors"
	"testing"
)

var blobs = [][]float64{
	{0, 0}, {0, 1}, {1, 0},
	{10, 10}, {10, 11}, {11, 10},
}

func TestFitKMeansSeparatesBlobs(t *testing.T) {
	km, err := FitKMeans(blobs, KMeansConfig{K: 2, Seed: 7})
	if err != nil {
		t.Fatalf("FitKMeans: %v", err)
	}
	labels := km.Labels()
	if len(labels) != len(blobs) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(blobs))
	}
	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Errorf("first blob split across clusters: %v", labels)
	}
	if labels[3] != labels[4] || labels[4] != labels[5] {
		t.Errorf("second blob split across clusters: %v", labels)
	}
	if labels[0] == labels[3] {
		t.Errorf("blobs share a cluster: %v", labels)
	}

	// Each blob is three points at squared distance 2/9, 5/9, 5/9 from its mean.
	if !almostEqual(km.Inertia, 2*(12.0/9.0)) {
		t.Errorf("Inertia = %v, want %v", km.Inertia, 2*(12.0/9.0))
	}

	got, err := km.Predict([]float64{0.4, 0.4})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != labels[0] {
		t.Errorf("Predict near first blob = %d, want %d", got, labels[0])
	}
}

func TestFitKMeansDeterministic(t *testing.T) {
	a, err := FitKMeans(blobs, KMeansConfig{K: 2, Seed: 42})
	if err != nil {
		t.Fatalf("FitKMeans: %v", err)
	}
	b, err := FitKMeans(blobs, KMeansConfig{K: 2, Seed: 42})
	if err != nil {
		t.Fatalf("FitKMeans: %v", err)
	}
	for c := range a.Centroids {
		for j := range a.Centroids[c] {
			if a.Centroids[c][j] != b.Centroids[c][j] {
				t.Fatalf("centroids differ for the same seed: %v vs %v", a.Centroids, b.Centroids)
			}
		}
	}
}

func TestFitKMeansErrors(t *testing.T) {
	if _, err := FitKMeans(nil, KMeansConfig{K: 2}); err == nil {
		t.Error("FitKMeans with no points should fail")
	}
	if _, err := FitKMeans(blobs[:1], KMeansConfig{K: 2}); err == nil {
		t.Error("FitKMeans with fewer points than k should fail")
	}
	if _, err := FitKMeans([][]float64{{1, 2}, {1}}, KMeansConfig{K: 1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("ragged points error = %v, want ErrDimensionMismatch", err)
	}
}

func TestPredictTiesGoToLowestCluster(t *testing.T) {
	km := &KMeans{Centroids: [][]float64{{-1, 0}, {1, 0}}}
	got, err := km.Predict([]float64{0, 0})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0 {
		t.Errorf("Predict equidistant = %d, want 0", got)
	}
	if _, err := km.Predict([]float64{0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Predict short vector error = %v, want ErrDimensionMismatch", err)
	}
	if _, err := km.Centroid(2); err == nil {
		t.Error("Centroid(2) should be out of range")
	}
}

func TestFingerprint(t *testing.T) {
	a := &KMeans{Centroids: [][]float64{{0, 0}, {10, 10}}}
	b := &KMeans{Centroids: [][]float64{{0, 0}, {10, 10}}}
	swapped := &KMeans{Centroids: [][]float64{{10, 10}, {0, 0}}}

	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("equal centroids gave %s and %s", a.Fingerprint(), b.Fingerprint())
	}
	if a.Fingerprint() == swapped.Fingerprint() {
		t.Error("reordered centroids share a fingerprint")
	}
}
