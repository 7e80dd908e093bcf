package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type KMeansConfig struct {
	K             int     `yaml:"k"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	NInit         int     `yaml:"n_init"`
	Seed          uint64  `yaml:"seed"`
}

func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		K:             5,
		MaxIterations: 300,
		Tolerance:     1e-4,
		NInit:         10,
		Seed:          42,
	}
}

func (c KMeansConfig) withDefaults() KMeansConfig {
	d := DefaultKMeansConfig()
	if c.K <= 0 {
		c.K = d.K
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.NInit <= 0 {
		c.NInit = d.NInit
	}
	return c
}

// KMeans is a fitted clustering model. Only the centroids are needed to
// predict; the rest is fit metadata.
type KMeans struct {
	Centroids  [][]float64 `json:"centroids"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"iterations"`
	Seed       uint64      `json:"seed"`
	NInit      int         `json:"n_init"`

	labels []int
}

// FitKMeans clusters points with k-means++ seeding and Lloyd iterations,
// keeping the run with the lowest inertia out of cfg.NInit. The result is
// deterministic for a given seed.
func FitKMeans(points [][]float64, cfg KMeansConfig) (*KMeans, error) {
	cfg = cfg.withDefaults()
	if len(points) == 0 {
		return nil, fmt.Errorf("fit kmeans: no points")
	}
	if len(points) < cfg.K {
		return nil, fmt.Errorf("fit kmeans: %d points is fewer than k=%d", len(points), cfg.K)
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("fit kmeans: point %d has %d values, want %d: %w", i, len(p), dim, ErrDimensionMismatch)
		}
	}

	tol := cfg.Tolerance * meanVariance(points, dim)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	var best *KMeans
	for run := 0; run < cfg.NInit; run++ {
		km := lloyd(points, seedPlusPlus(points, cfg.K, rng), cfg.MaxIterations, tol)
		if best == nil || km.Inertia < best.Inertia {
			best = km
		}
	}
	best.Seed = cfg.Seed
	best.NInit = cfg.NInit
	return best, nil
}

// K is the number of clusters.
func (m *KMeans) K() int {
	return len(m.Centroids)
}

// Dim is the dimensionality of the centroids.
func (m *KMeans) Dim() int {
	if len(m.Centroids) == 0 {
		return 0
	}
	return len(m.Centroids[0])
}

// Fingerprint identifies the centroids. Two models with the same centroids
// in the same order share a fingerprint.
func (m *KMeans) Fingerprint() string {
	d := xxhash.New()
	var buf [8]byte
	for _, c := range m.Centroids {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(c)))
		d.Write(buf[:])
		for _, x := range c {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
			d.Write(buf[:])
		}
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// Labels returns the training assignments. Nil for a model loaded from disk.
func (m *KMeans) Labels() []int {
	return m.labels
}

// Centroid returns a copy of centroid id.
func (m *KMeans) Centroid(id int) ([]float64, error) {
	if id < 0 || id >= len(m.Centroids) {
		return nil, fmt.Errorf("cluster %d out of range [0,%d)", id, len(m.Centroids))
	}
	return append([]float64(nil), m.Centroids[id]...), nil
}

// Predict assigns a scaled vector to its nearest centroid.
func (m *KMeans) Predict(x []float64) (int, error) {
	if len(m.Centroids) == 0 {
		return 0, fmt.Errorf("predict: model has no centroids")
	}
	if len(x) != m.Dim() {
		return 0, fmt.Errorf("predict: got %d values, want %d: %w", len(x), m.Dim(), ErrDimensionMismatch)
	}
	id, _ := nearest(x, m.Centroids)
	return id, nil
}

func lloyd(points, centroids [][]float64, maxIter int, tol float64) *KMeans {
	k := len(centroids)
	dim := len(points[0])
	labels := make([]int, len(points))
	dists := make([]float64, len(points))

	iter := 0
	for iter < maxIter {
		iter++
		for i, p := range points {
			labels[i], dists[i] = nearest(p, centroids)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range points {
			floats.Add(next[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an empty cluster with the worst-fit point.
				far := floats.MaxIdx(dists)
				copy(next[c], points[far])
				dists[far] = 0
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		var shift float64
		for c := range centroids {
			d := floats.Distance(centroids[c], next[c], 2)
			shift += d * d
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	var inertia float64
	for i, p := range points {
		labels[i], dists[i] = nearest(p, centroids)
		inertia += dists[i]
	}
	return &KMeans{Centroids: centroids, Inertia: inertia, Iterations: iter, labels: labels}
}

// seedPlusPlus picks k initial centroids, each new one sampled with
// probability proportional to its squared distance from the chosen set.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), points[rng.IntN(len(points))]...))

	d2 := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			_, d2[i] = nearest(p, centroids)
			total += d2[i]
		}

		idx := 0
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range d2 {
				target -= d
				if target <= 0 {
					idx = i
					break
				}
				idx = i
			}
		} else {
			idx = rng.IntN(len(points))
		}
		centroids = append(centroids, append([]float64(nil), points[idx]...))
	}
	return centroids
}

// nearest returns the closest centroid and the squared distance to it.
// Ties go to the lowest id.
func nearest(x []float64, centroids [][]float64) (int, float64) {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		d := floats.Distance(x, centroid, 2)
		if d*d < bestDist {
			bestDist = d * d
			best = c
		}
	}
	return best, bestDist
}

func meanVariance(points [][]float64, dim int) float64 {
	col := make([]float64, len(points))
	var sum float64
	for j := 0; j < dim; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		_, std := stat.PopMeanStdDev(col, nil)
		sum += std * std
	}
	return sum / float64(dim)
}
