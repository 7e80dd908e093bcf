package trainer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"github.com/matchminds/backend/internal/dataset"
	"github.com/matchminds/backend/internal/model"
	"github.com/matchminds/backend/internal/models"
)

// Report summarizes a finished training run.
type Report struct {
	Rows         int               `json:"rows" yaml:"rows"`
	Features     []string          `json:"features" yaml:"features"`
	FilledCells  int               `json:"filled_cells" yaml:"filled_cells"`
	K            int               `json:"k" yaml:"k"`
	Inertia      float64           `json:"inertia" yaml:"inertia"`
	Iterations   int               `json:"iterations" yaml:"iterations"`
	ClusterSizes map[int]int       `json:"cluster_sizes" yaml:"cluster_sizes"`
	Artifacts    map[string]string `json:"artifacts" yaml:"artifacts"`
}

// ElbowPoint is the inertia of a fit at one k.
type ElbowPoint struct {
	K       int     `json:"k" yaml:"k"`
	Inertia float64 `json:"inertia" yaml:"inertia"`
}

type prepared struct {
	table    *dataset.Table
	features []string
	filled   int
	scaler   *model.Scaler
	scaled   [][]float64
}

func prepare(opts Options) (*prepared, error) {
	table, err := dataset.ReadCSV(opts.DatasetPath)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no rows", opts.DatasetPath)
	}

	exclude := append([]string{opts.ClusterColumn}, opts.IdentityColumns...)
	cols := table.NumericColumns(exclude)
	if len(cols) == 0 {
		return nil, fmt.Errorf("dataset %s has no numeric columns", opts.DatasetPath)
	}
	if skipped := len(table.Header) - len(cols); skipped > 0 {
		log.Printf("[trainer] %d non-numeric or identity columns excluded", skipped)
	}

	matrix, filled, err := table.Matrix(cols)
	if err != nil {
		return nil, err
	}
	if filled > 0 {
		log.Printf("[trainer] filled %d missing cells with column means", filled)
	}

	features := table.Columns(cols)
	scaler, err := model.FitScaler(matrix, features)
	if err != nil {
		return nil, err
	}
	scaled, err := scaler.TransformAll(matrix)
	if err != nil {
		return nil, err
	}

	return &prepared{table: table, features: features, filled: filled, scaler: scaler, scaled: scaled}, nil
}

// Train runs the full offline pipeline and writes the clustered table,
// scaler, model and schema into opts.ArtifactDir.
func Train(ctx context.Context, opts Options) (*Report, error) {
	opts = opts.withDefaults()

	p, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	km, err := model.FitKMeans(p.scaled, opts.KMeans)
	if err != nil {
		return nil, err
	}
	log.Printf("[trainer] k=%d converged in %d iterations, inertia %.4f", km.K(), km.Iterations, km.Inertia)

	labels := km.Labels()
	values := make([]string, len(labels))
	sizes := make(map[int]int, km.K())
	for i, l := range labels {
		values[i] = strconv.Itoa(l)
		sizes[l]++
	}
	if idx := p.table.ColumnIndex(opts.ClusterColumn); idx >= 0 {
		// Retraining on an already clustered table replaces the old labels.
		for i := range p.table.Rows {
			p.table.Rows[i][idx] = values[i]
		}
	} else if err := p.table.AppendColumn(opts.ClusterColumn, values); err != nil {
		return nil, err
	}

	schema := make([]string, len(p.features))
	for i, f := range p.features {
		schema[i] = models.CanonicalFeature(f)
	}

	unlock, err := model.Lock(opts.ArtifactDir, opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	clustered := filepath.Join(opts.ArtifactDir, model.ClusteredFile)
	if err := dataset.WriteCSV(clustered, p.table); err != nil {
		return nil, fmt.Errorf("save clustered data: %w", err)
	}
	if err := model.SaveKMeans(opts.ArtifactDir, km); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	if err := model.SaveScaler(opts.ArtifactDir, p.scaler); err != nil {
		return nil, fmt.Errorf("save scaler: %w", err)
	}
	if err := model.SaveSchema(opts.ArtifactDir, schema); err != nil {
		return nil, fmt.Errorf("save schema: %w", err)
	}

	return &Report{
		Rows:         len(p.table.Rows),
		Features:     schema,
		FilledCells:  p.filled,
		K:            km.K(),
		Inertia:      km.Inertia,
		Iterations:   km.Iterations,
		ClusterSizes: sizes,
		Artifacts: map[string]string{
			"clustered": clustered,
			"model":     filepath.Join(opts.ArtifactDir, model.ModelFile),
			"scaler":    filepath.Join(opts.ArtifactDir, model.ScalerFile),
			"schema":    filepath.Join(opts.ArtifactDir, model.SchemaFile),
		},
	}, nil
}

// Elbow fits k-means for every k in [kMin, kMax] and reports the inertia of
// each fit, for choosing k by eye. Nothing is written.
func Elbow(ctx context.Context, opts Options, kMin, kMax int) ([]ElbowPoint, error) {
	opts = opts.withDefaults()
	if kMin < 1 || kMax < kMin {
		return nil, fmt.Errorf("invalid k range [%d, %d]", kMin, kMax)
	}

	p, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	points := make([]ElbowPoint, 0, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg := opts.KMeans
		cfg.K = k
		km, err := model.FitKMeans(p.scaled, cfg)
		if err != nil {
			return nil, fmt.Errorf("k=%d: %w", k, err)
		}
		points = append(points, ElbowPoint{K: k, Inertia: km.Inertia})
	}
	return points, nil
}
