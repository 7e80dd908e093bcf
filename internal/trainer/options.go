package trainer

import (
	"fmt"
	"os"
	"time"

	"github.com/matchminds/backend/internal/model"
	"gopkg.in/yaml.v3"
)

// Options controls one training run. Zero values take the defaults from
// DefaultOptions.
type Options struct {
	DatasetPath     string             `yaml:"dataset"`
	ArtifactDir     string             `yaml:"artifact_dir"`
	IdentityColumns []string           `yaml:"identity_columns"`
	ClusterColumn   string             `yaml:"cluster_column"`
	KMeans          model.KMeansConfig `yaml:"kmeans"`
	LockTimeout     time.Duration      `yaml:"lock_timeout"`
}

func DefaultOptions() Options {
	return Options{
		DatasetPath:     "dataset of friendship compatibility.csv",
		ArtifactDir:     "artifacts",
		IdentityColumns: []string{"Full Name", "Gender"},
		ClusterColumn:   "Cluster",
		KMeans:          model.DefaultKMeansConfig(),
		LockTimeout:     10 * time.Second,
	}
}

// LoadOptions reads a YAML options file over the defaults. An empty path
// returns the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read trainer config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &opts); err != nil {
		return opts, fmt.Errorf("parse trainer config %s: %w", path, err)
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DatasetPath == "" {
		o.DatasetPath = d.DatasetPath
	}
	if o.ArtifactDir == "" {
		o.ArtifactDir = d.ArtifactDir
	}
	if o.IdentityColumns == nil {
		o.IdentityColumns = d.IdentityColumns
	}
	if o.ClusterColumn == "" {
		o.ClusterColumn = d.ClusterColumn
	}
	if o.LockTimeout <= 0 {
		o.LockTimeout = d.LockTimeout
	}
	return o
}
